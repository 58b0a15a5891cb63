/*
Package jobtest provides test doubles and helpers for testing code that is
built on top of the jobchain framework: authentication mocks, keys and
conditions, fake transactions, messages, handlers and decorators, as well as
a file backed commit store.
*/
package jobtest
