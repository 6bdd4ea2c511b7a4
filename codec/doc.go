/*
Package codec encodes messages in the protobuf wire format.

Messages implement proto.Message and their own Marshal and Unmarshal
methods, written with a Writer and a field table. proto.Marshal and
proto.Unmarshal delegate to those methods, so any protobuf client can
decode a transaction given the field numbers declared in the struct
tags.
*/
package codec
