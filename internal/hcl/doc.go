// Package hcl provides the HCL implementation of config.Loader. Files are
// parsed with hclparse, decoded with gohcl and evaluated against a context
// that exposes the process environment as env.<NAME>.
package hcl
