// Package ext provides optional value converters beyond the standard upper,
// lower, matches and replace.
//
// The converters live in sub-packages grouped by category:
//   - extstring   – startsWith, camelCase, truncate, trim, template, …
//   - extnumeric  – number, round, fixed, clamp, median, percentile, …
//   - extarray    – first, take, chunk, union, sortBy, groupBy, sumBy, …
//   - extobject   – keys, values, pick, omit, merge, rename, …
//   - exttypes    – isString, isEmpty, typeOf, default, identity, …
//   - extdatetime – date, dateAdd, dateDiff, dateStartOf, …
//   - extcrypto   – uuid, hash, hmac
//   - extformat   – json, yaml, csv, toCSV
//   - extfunc     – pipe, memoize
//
// # Integration – all extensions at once
//
//	rt := gobinding.New(ext.WithAll())
//
// # Integration – by category
//
//	rt := gobinding.New(ext.WithString(), ext.WithArray())
//
// # Integration – single converter from a sub-package
//
//	rt := gobinding.New(gobinding.WithConverters(extstring.Truncate()))
//
// # Integration – an existing registry
//
//	reg := resources.NewStandardRegistry()
//	ext.Register(reg)
package ext

import (
	"github.com/sandrolain/gobinding"
	"github.com/sandrolain/gobinding/pkg/ext/extarray"
	"github.com/sandrolain/gobinding/pkg/ext/extcrypto"
	"github.com/sandrolain/gobinding/pkg/ext/extdatetime"
	"github.com/sandrolain/gobinding/pkg/ext/extformat"
	"github.com/sandrolain/gobinding/pkg/ext/extfunc"
	"github.com/sandrolain/gobinding/pkg/ext/extnumeric"
	"github.com/sandrolain/gobinding/pkg/ext/extobject"
	"github.com/sandrolain/gobinding/pkg/ext/extstring"
	"github.com/sandrolain/gobinding/pkg/ext/exttypes"
	"github.com/sandrolain/gobinding/pkg/resources"
)

// All returns every extension converter.
func All() []resources.ConverterDef {
	var all []resources.ConverterDef
	all = append(all, extstring.All()...)
	all = append(all, extnumeric.All()...)
	all = append(all, extarray.All()...)
	all = append(all, extobject.All()...)
	all = append(all, exttypes.All()...)
	all = append(all, extdatetime.All()...)
	all = append(all, extcrypto.All()...)
	all = append(all, extformat.All()...)
	all = append(all, extfunc.All()...)
	return all
}

// Register adds every extension converter to r.
func Register(r *resources.Registry) {
	r.Register(All()...)
}

// WithAll returns an Option that registers every extension converter.
func WithAll() gobinding.Option {
	return gobinding.WithConverters(All()...)
}

// WithString returns an Option for the string converters.
func WithString() gobinding.Option {
	return gobinding.WithConverters(extstring.All()...)
}

// WithNumeric returns an Option for the numeric converters.
func WithNumeric() gobinding.Option {
	return gobinding.WithConverters(extnumeric.All()...)
}

// WithArray returns an Option for the array converters.
func WithArray() gobinding.Option {
	return gobinding.WithConverters(extarray.All()...)
}

// WithObject returns an Option for the object converters.
func WithObject() gobinding.Option {
	return gobinding.WithConverters(extobject.All()...)
}

// WithTypes returns an Option for the type converters.
func WithTypes() gobinding.Option {
	return gobinding.WithConverters(exttypes.All()...)
}

// WithDateTime returns an Option for the date converters.
func WithDateTime() gobinding.Option {
	return gobinding.WithConverters(extdatetime.All()...)
}

// WithCrypto returns an Option for the hashing converters.
func WithCrypto() gobinding.Option {
	return gobinding.WithConverters(extcrypto.All()...)
}

// WithFormat returns an Option for the JSON, YAML and CSV converters.
func WithFormat() gobinding.Option {
	return gobinding.WithConverters(extformat.All()...)
}

// WithFunctional returns an Option for pipe and memoize.
func WithFunctional() gobinding.Option {
	return gobinding.WithConverters(extfunc.All()...)
}
