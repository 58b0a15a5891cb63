/*
Package cash defines a simple implementation of holding and sending a single
native token between wallets.

There is no logic in the token, except that the balance of any wallet may
not go below zero and cannot overflow. Thus, this implementation is
referred to as cash. Simple and safe.

Escrow custody accounts are regular wallets owned by a derived condition,
so all value movement in the application goes through the Controller.
*/
package cash
