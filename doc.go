/*
Package jobchain defines interfaces used throughout the app, such as storage,
transactions and handlers. It also contains helpers to work with context,
conditions, addresses and abci results.

The escrow job protocol itself lives in x/job and x/escrow. Everything in
this package is the framework that those extensions are built on.
*/
package jobchain
