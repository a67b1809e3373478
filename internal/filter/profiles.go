// SPDX-License-Identifier: MIT
package filter

import (
	"fmt"
	"sort"
	"strings"
)

// Band is a pass-band in Hz.
type Band struct {
	Low  float64
	High float64
}

// Speech pass-bands by voice profile.
var voiceProfiles = map[string]Band{
	"male":      {Low: 80, High: 8000},
	"female":    {Low: 100, High: 10000},
	"broadband": {Low: 50, High: 12000},
}

// DefaultProfile is used when no profile is named.
const DefaultProfile = "broadband"

// Profile returns the pass-band for a voice profile name. An empty name
// selects DefaultProfile.
func Profile(name string) (Band, error) {
	if name == "" {
		name = DefaultProfile
	}
	band, ok := voiceProfiles[strings.ToLower(name)]
	if !ok {
		return Band{}, fmt.Errorf("%w: unknown voice profile %q (want one of %s)",
			ErrInvalidParameter, name, strings.Join(Profiles(), ", "))
	}
	return band, nil
}

// Profiles lists the known profile names in sorted order.
func Profiles() []string {
	names := make([]string, 0, len(voiceProfiles))
	for name := range voiceProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve picks the band for a profile and overrides either edge with a
// positive explicit cutoff.
func Resolve(profile string, lowcut, highcut float64) (Band, error) {
	band, err := Profile(profile)
	if err != nil {
		return Band{}, err
	}
	if lowcut > 0 {
		band.Low = lowcut
	}
	if highcut > 0 {
		band.High = highcut
	}
	return band, nil
}
