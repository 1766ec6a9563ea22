// Package extcrypto provides hashing and identifier converters.
//
// MD5 and SHA-1 are offered for fingerprinting only and must not be used
// where security matters.
package extcrypto

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // fingerprinting only
	"crypto/sha1" //nolint:gosec // fingerprinting only
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"strings"

	"github.com/google/uuid"

	"github.com/sandrolain/gobinding/pkg/ast"
	"github.com/sandrolain/gobinding/pkg/ext/extutil"
	"github.com/sandrolain/gobinding/pkg/resources"
	"github.com/sandrolain/gobinding/pkg/types"
)

// All returns every crypto converter.
func All() []resources.ConverterDef {
	return []resources.ConverterDef{
		UUID(),
		Hash(),
		HMAC(),
	}
}

// UUID derives a name-based (version 5) UUID from the value, so the same
// value always maps to the same identifier. A nullish value yields a fresh
// random UUID. An optional argument names the namespace: dns, url, oid or
// x500, or any UUID string. The default is url.
func UUID() resources.ConverterDef {
	return resources.ConverterDef{
		Name: "uuid",
		Converter: resources.ConverterFunc(func(value interface{}, args ...interface{}) (interface{}, error) {
			if types.IsNullish(value) {
				return uuid.NewString(), nil
			}
			ns, err := namespace(extutil.Arg(args, 0))
			if err != nil {
				return nil, err
			}
			return uuid.NewSHA1(ns, []byte(ast.ToString(value))).String(), nil
		}),
	}
}

func namespace(v interface{}) (uuid.UUID, error) {
	if types.IsNullish(v) {
		return uuid.NameSpaceURL, nil
	}
	name := ast.ToString(v)
	switch strings.ToLower(name) {
	case "dns":
		return uuid.NameSpaceDNS, nil
	case "url":
		return uuid.NameSpaceURL, nil
	case "oid":
		return uuid.NameSpaceOID, nil
	case "x500":
		return uuid.NameSpaceX500, nil
	}
	ns, err := uuid.Parse(name)
	if err != nil {
		return uuid.Nil, extutil.Errorf("uuid", "invalid namespace %q", name).WithCause(err)
	}
	return ns, nil
}

func hasher(name string, algorithm interface{}) (func() hash.Hash, error) {
	algo := "sha256"
	if !types.IsNullish(algorithm) {
		algo = strings.ToLower(ast.ToString(algorithm))
	}
	switch algo {
	case "md5":
		return md5.New, nil
	case "sha1":
		return sha1.New, nil
	case "sha256":
		return sha256.New, nil
	case "sha384":
		return sha512.New384, nil
	case "sha512":
		return sha512.New, nil
	}
	return nil, extutil.Errorf(name, "unsupported algorithm %q; use md5, sha1, sha256, sha384 or sha512", algo)
}

// Hash is value | hash[:algorithm], a lowercase hex digest. The algorithm
// defaults to sha256.
func Hash() resources.ConverterDef {
	return resources.ConverterDef{
		Name: "hash",
		Converter: resources.ConverterFunc(func(value interface{}, args ...interface{}) (interface{}, error) {
			if types.IsNullish(value) {
				return value, nil
			}
			newHash, err := hasher("hash", extutil.Arg(args, 0))
			if err != nil {
				return nil, err
			}
			h := newHash()
			h.Write([]byte(ast.ToString(value)))
			return hex.EncodeToString(h.Sum(nil)), nil
		}),
	}
}

// HMAC is value | hmac:key[:algorithm], a lowercase hex MAC.
func HMAC() resources.ConverterDef {
	return resources.ConverterDef{
		Name: "hmac",
		Converter: resources.ConverterFunc(func(value interface{}, args ...interface{}) (interface{}, error) {
			if types.IsNullish(value) {
				return value, nil
			}
			key := extutil.Arg(args, 0)
			if types.IsNullish(key) {
				return nil, extutil.Errorf("hmac", "a key is required")
			}
			newHash, err := hasher("hmac", extutil.Arg(args, 1))
			if err != nil {
				return nil, err
			}
			mac := hmac.New(newHash, []byte(ast.ToString(key)))
			mac.Write([]byte(ast.ToString(value)))
			return hex.EncodeToString(mac.Sum(nil)), nil
		}),
	}
}
