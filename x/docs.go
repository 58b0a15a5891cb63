/*
Package x contains the standard extensions of the chain.

Extensions implement common functionality (Handler, Decorator,
etc.) and are combined together to construct the application.
This package holds the helpers that all of them share: authentication
checks and the validation contract of messages and models.
*/
package x
