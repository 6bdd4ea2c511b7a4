/*
Package utils contains the decorators shared by every application:
panic recovery, savepoints, logging, metrics and action tags.
*/
package utils
