package main

import (
	"regexp"
	"strings"
)

var defaultUplinkVLANs = []string{"3", "4094"}

// sessionHeader starts the "show datapath session uplink" table
const sessionHeader = "SIDX"

var ipv4Like = regexp.MustCompile(`^[0-9.]{7,}$`)

// UplinkSignature finds local traffic redirected to an uplink.
//
// Input is "show ip interface brief" followed by "show datapath session
// uplink | begin SIDX". Interfaces on uplink VLANs are not local.
type UplinkSignature struct {
	vlans   []string
	uplinks map[string]bool
}

// NewUplinkSignature returns an UplinkSignature treating vlans as uplinks
func NewUplinkSignature(vlans []string) *UplinkSignature {
	uplinks := make(map[string]bool, len(vlans))
	for _, v := range vlans {
		uplinks[v] = true
	}
	return &UplinkSignature{vlans: vlans, uplinks: uplinks}
}

func (s *UplinkSignature) Name() string {
	return "uplink"
}

func (s *UplinkSignature) Description() string {
	return "local-to-local sessions redirected to uplink VLANs " + strings.Join(s.vlans, ",")
}

func (s *UplinkSignature) Scan(lines []string) ScanResult {
	var result ScanResult
	var prefixes []string
	inSessions := false

	for i, line := range lines {
		lineNum := i + 1
		fields := strings.Fields(line)

		if !inSessions {
			if len(fields) > 0 && fields[0] == sessionHeader {
				inSessions = true
				continue
			}
			if !strings.Contains(line, interfaceMarker) {
				continue
			}
			if len(fields) < 3 {
				result.Warnings = append(result.Warnings, LineWarning{
					Line:   lineNum,
					Text:   strings.TrimSpace(line),
					Reason: "interface line has fewer than 3 fields",
				})
				continue
			}
			vlan, addr := fields[1], fields[2]
			dot := strings.LastIndex(addr, ".")
			if dot > 0 && ipv4Like.MatchString(addr) && !s.uplinks[vlan] {
				prefixes = append(prefixes, addr[:dot+1])
			}
			continue
		}

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
