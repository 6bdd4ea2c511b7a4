/*
Package orm stores models in named buckets of a KVStore.

Every bucket owns the key space "<name>:" and stores one model type
under keys chosen by the extension. For custody those keys are account
addresses, so two buckets never share a global counter or index and
unrelated accounts never touch the same key.
*/
package orm
