/*
Package gconf implements a configuration store intended to be used as a
global, in-database configuration.

Each extension keeps one configuration object, loaded from the "conf"
section of the genesis file and stored under "_c:<package>". Values are
serialized with amino.

Not being able to load a configuration is a critical condition for the
application and there is no recovery path for the client. Extensions
fail every message until the node is configured correctly.
*/
package gconf
