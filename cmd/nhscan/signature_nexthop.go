package main

import (
	"strings"
)

// NextHopSignature finds sessions between two local subnets that the
// datapath sends through a next-hop instead of switching them.
//
// Input is "show ip interface brief" followed by "show datapath session
// table" in the same dump.
type NextHopSignature struct{}

func (s *NextHopSignature) Name() string {
	return "nexthop"
}

func (s *NextHopSignature) Description() string {
	return "local-to-local sessions routed via a next-hop (bug 179415)"
}

// Scan is pure, the prefix list lives only for the duration of the call
func (s *NextHopSignature) Scan(lines []string) ScanResult {
	var result ScanResult
	var prefixes []string

	for i, line := range lines {
		lineNum := i + 1

		if strings.HasPrefix(line, interfaceMarker) {
			fields := strings.Fields(line)
			if len(fields) < 3 {
				result.Warnings = append(result.Warnings, LineWarning{
					Line:   lineNum,
					Text:   strings.TrimSpace(line),
					Reason: "interface line has fewer than 3 fields",
				})
				continue
			}
			if fields[2] != unassigned {
				prefixes = append(prefixes, subnetPrefix(fields[2]))
			}
			continue
		}

		if !strings.Contains(line, nextHopMarker) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		result.Sessions++

		src, dst := fields[0], fields[1]
		if matchesAny(src, prefixes) && matchesAny(dst, prefixes) {
			result.Flagged = append(result.Flagged, NewFlaggedRow(lineNum, line, src, dst))
		}
	}

	result.Interfaces = prefixes
	result.finish()
	return result
}

// Scan runs the default signature over a dump
func Scan(lines []string) ScanResult {
	return (&NextHopSignature{}).Scan(lines)
}

// subnetPrefix keeps the first three dot-separated components of addr
// and appends a dot: "10.0.1.5/24" becomes "10.0.1.".
func subnetPrefix(addr string) string {
	parts := strings.Split(addr, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, ".") + "."
}
