/*
Package app contains the glue between the tendermint ABCI interface
and the custody handlers: routing by message path, decorator chains,
the committed store, block context and the parallel scheduler.
*/
package app
