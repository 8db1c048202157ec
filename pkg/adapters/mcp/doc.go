// Package mcp exposes session resources to Model Context Protocol clients as tools.
package mcp
