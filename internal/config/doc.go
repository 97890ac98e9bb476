// Package config defines the format-agnostic project model: where the
// container and the RPL descriptions live, where external files go, and the
// statics defined for a run. Concrete loaders, such as the HCL one in
// internal/hclconfig, fill it from a project file.
package config
