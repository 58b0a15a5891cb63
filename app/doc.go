/*
Package app contains the building blocks of an ABCI application: the
commit store that keeps separate check and deliver caches, the message
router, the decorator chain and the BaseApp that ties them together.
*/
package app
