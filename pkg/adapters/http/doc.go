// Package http exposes session resources as a JSON API with a Server-Sent Events stream of transitions.
package http
