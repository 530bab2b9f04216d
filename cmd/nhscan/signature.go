package main

import (
	"errors"
	"fmt"
	"strings"
)

// Signature detects one known bug in a controller dump
type Signature interface {
	Name() string
	Description() string
	Scan(lines []string) ScanResult
}

var ErrUnknownSignature = errors.New("unknown signature")

// Markers shared by the signatures
const (
	interfaceMarker = "vlan "
	nextHopMarker   = "nh 0x"
	unassigned      = "unassigned"
)

// newSignature builds the signature selected by the configuration
func newSignature(cfg *Config) (Signature, error) {
	switch cfg.Signature {
	case "", "nexthop":
		return &NextHopSignature{}, nil
	case "uplink":
		return NewUplinkSignature(cfg.UplinkVLANs), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSignature, cfg.Signature)
	}
}

// availableSignatures lists every signature with its default settings
func availableSignatures() []Signature {
	return []Signature{
		&NextHopSignature{},
		NewUplinkSignature(defaultUplinkVLANs),
	}
}

// matchesAny reports whether field starts with at least one prefix.
// This is plain string comparison, the dumps are never parsed as CIDRs.
func matchesAny(field string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(field, p) {
			return true
		}
	}
	return false
}
