/*
Package x contains the extensions of the custody application.

Extensions implement Handlers and Decorators and are combined together
in the std package. Authentication is shared through the Authenticator
interface declared here, so that handlers do not depend on how
signatures are verified.
*/
package x
