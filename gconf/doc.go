/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration of an extension.

Each extension keeps a single configuration entity, stored under the
"_c:<package name>" key. The configuration is created from the genesis file
"conf" section and can later be patched by its owner with an update
configuration message.
*/
package gconf
