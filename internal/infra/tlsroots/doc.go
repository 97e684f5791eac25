// Package tlsroots loads TLS material for the chat server and CLI.
//
// KeyPair holds the server certificate and can be reloaded in place, so a
// renewed certificate is picked up without restarting the listener. Pool
// builds a client trust store from the system roots plus a private CA.
package tlsroots
