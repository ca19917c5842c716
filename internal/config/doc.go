// Package config defines the format-agnostic configuration model for the
// application, along with the Loader interface implemented by concrete
// formats. The HCL implementation lives in the hcl package.
//
// Values not set by any source keep the defaults returned by Default.
package config
