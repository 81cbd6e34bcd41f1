/*
pairing.go - Layover pairing algorithm

PURPOSE:
  A layover is two duty records: an outbound leg ending at an outstation and
  an inbound leg returning to base some days later. The records arrive
  unlinked (roster exports carry no pair IDs), so the engine derives the
  relationship: destination/origin matching plus temporal proximity.

  This is the one source of truth for pairing. Earlier iterations of the
  system had several independent reimplementations with diverging windows
  (3 vs 5 days); the 5-day window here is the contract.

ALGORITHM:
  1. Parse each layover's sectors into an ordered airport sequence and
     classify it: first airport == base -> outbound; last airport == base ->
     inbound. The rest destination is the non-base airport of the first
     sector.
  2. Enumerate every viable (outbound, inbound) pairing: opposite legs of the
     same user at the same destination, inbound strictly after the outbound,
     within the window.
  3. Resolve pairings smallest day gap first, consuming both legs of each
     resolved pair. A leg belongs to at most one pair: an inbound that closed
     one outbound's layover can never close another's.
  4. Residual ties (equally near pairings competing for a consumed leg)
     resolve deterministically (outbound date, report times, IDs) and are
     surfaced as a PairingAmbiguous warning on the resolved pair.

  An unpaired leg is a valid terminal state: the inbound leg of a pair that
  opened in the previous payroll month is expected to stand alone.

INVARIANTS:
  - A duty belongs to at most one pair per calculation pass.
  - Resolution is independent of input ordering.
  - Pairing is recomputed on every call; it is never cached across calls,
    so edits and deletions cannot leave a stale link behind.

SEE ALSO:
  - rest.go: Rest/per-diem computed from a resolved pair
  - aggregate.go: Resolves the pairs once per month calculation
*/
package salary

import (
	"fmt"
	"sort"
	"strings"
)

// Direction of a layover leg relative to base.
type Direction int

const (
	DirectionOutbound Direction = iota // base -> outstation
	DirectionInbound                   // outstation -> base
)

func (d Direction) String() string {
	if d == DirectionOutbound {
		return "outbound"
	}
	return "inbound"
}

// sectorSeparators in the order they are tried. Roster exports are not
// consistent: "DXB-VKO", "DXB - VKO" and "DXB → VKO" all occur.
var sectorSeparators = []string{"→", " - ", "-"}

// sectorEndpoints splits one "ORIGIN-DEST" sector string.
func sectorEndpoints(sector string) (origin, dest string, err error) {
	for _, sep := range sectorSeparators {
		if idx := strings.Index(sector, sep); idx >= 0 {
			origin = strings.ToUpper(strings.TrimSpace(sector[:idx]))
			dest = strings.ToUpper(strings.TrimSpace(sector[idx+len(sep):]))
			if origin != "" && dest != "" {
				return origin, dest, nil
			}
		}
	}
	return "", "", ErrInvalidSector
}

// SectorAirports parses an ordered sector list into the visited airport
// sequence, e.g. ["DXB-VKO","VKO-DXB"] -> [DXB VKO DXB].
func SectorAirports(sectors []string) ([]string, error) {
	if len(sectors) == 0 {
		return nil, ErrInvalidSector
	}
	var airports []string
	for _, s := range sectors {
		origin, dest, err := sectorEndpoints(s)
		if err != nil {
			return nil, err
		}
		if len(airports) == 0 || airports[len(airports)-1] != origin {
			airports = append(airports, origin)
		}
		airports = append(airports, dest)
	}
	return airports, nil
}

// ClassifyDirection determines whether a layover duty is the outbound or
// inbound leg, and the outstation the rest takes place at (the non-base
// airport of the first sector).
func ClassifyDirection(duty FlightDuty, base string) (Direction, string, error) {
	airports, err := SectorAirports(duty.Sectors)
	if err != nil {
		return 0, "", &SectorError{DutyID: duty.ID, Sector: strings.Join(duty.Sectors, ",")}
	}
	origin, dest, err := sectorEndpoints(duty.Sectors[0])
	if err != nil {
		return 0, "", &SectorError{DutyID: duty.ID, Sector: duty.Sectors[0]}
	}

	switch {
	case airports[0] == base:
		return DirectionOutbound, dest, nil
	case airports[len(airports)-1] == base:
		return DirectionInbound, origin, nil
	default:
		// Neither end touches base: treat the leg as outbound from wherever
		// it started so it can still surface in listings, with its first
		// destination as the outstation. ResolveLayoverPairs flags it.
		return DirectionOutbound, dest, nil
	}
}

// LayoverPair is one resolved outbound/inbound pairing. Warning is non-nil
// when a residual tie-break had to pick between equally near pairings.
type LayoverPair struct {
	Outbound    FlightDuty
	Inbound     FlightDuty
	Destination string
	Warning     *Warning
}

type layoverLeg struct {
	duty FlightDuty
	dest string
}

// ResolveLayoverPairs resolves every layover pair in the duty list in one
// pass. Each leg joins at most one pair. Pairings with smaller day gaps
// resolve first, so contention between two outbounds for one inbound goes to
// the temporally nearer outbound. The returned warnings flag legs whose
// sectors touch base at neither end; tie-break warnings ride on the pair
// itself. The duty list may span months and be in any order; only layover
// duties of the given user are considered, and rows with unparseable sectors
// are skipped (they cannot pair).
func ResolveLayoverPairs(userID UserID, duties []FlightDuty, cfg Config) ([]LayoverPair, []Warning) {
	var outs, ins []layoverLeg
	var legWarnings []Warning
	for _, d := range duties {
		if d.UserID != userID || d.DutyType != DutyLayover {
			continue
		}
		airports, err := SectorAirports(d.Sectors)
		if err != nil {
			continue
		}
		dir, dest, err := ClassifyDirection(d, cfg.BaseAirport)
		if err != nil {
			continue
		}
		if airports[0] != cfg.BaseAirport && airports[len(airports)-1] != cfg.BaseAirport {
			legWarnings = append(legWarnings, Warning{
				Code:   WarnSectorMissingBase,
				DutyID: d.ID,
				Message: fmt.Sprintf("layover %s sectors %s touch %s at neither end; treated as outbound to %s",
					d.ID, strings.Join(d.Sectors, ","), cfg.BaseAirport, dest),
			})
		}
		leg := layoverLeg{duty: d, dest: dest}
		if dir == DirectionOutbound {
			outs = append(outs, leg)
		} else {
			ins = append(ins, leg)
		}
	}

	type pairing struct{ out, in, delta int }
	var viable []pairing
	for oi := range outs {
		for ii := range ins {
			if ins[ii].dest != outs[oi].dest {
				continue
			}
			delta := DaysBetween(outs[oi].duty.Day(), ins[ii].duty.Day())
			// Inbound strictly after the outbound, inside the window.
			if delta < 1 || delta > cfg.PairingWindowDays {
				continue
			}
			viable = append(viable, pairing{oi, ii, delta})
		}
	}

	// Smallest day gap first; residual order by the legs' dates, report
	// times, then IDs, so resolution never depends on input ordering.
	sort.Slice(viable, func(i, j int) bool {
		a, b := viable[i], viable[j]
		if a.delta != b.delta {
			return a.delta < b.delta
		}
		ao, bo := outs[a.out].duty, outs[b.out].duty
		if !ao.Date.Equal(bo.Date) {
			return ao.Date.Before(bo.Date)
		}
		if !ao.ReportTime.Equal(bo.ReportTime) {
			return ao.ReportTime.Before(bo.ReportTime)
		}
		if ao.ID != bo.ID {
			return ao.ID < bo.ID
		}
		ai, bi := ins[a.in].duty, ins[b.in].duty
		if !ai.ReportTime.Equal(bi.ReportTime) {
			return ai.ReportTime.Before(bi.ReportTime)
		}
		return ai.ID < bi.ID
	})

	usedOut := make(map[int]bool)
	usedIn := make(map[int]bool)
	var pairs []LayoverPair
	for k, p := range viable {
		if usedOut[p.out] || usedIn[p.in] {
			continue
		}
		usedOut[p.out], usedIn[p.in] = true, true

		pair := LayoverPair{
			Outbound:    outs[p.out].duty,
			Inbound:     ins[p.in].duty,
			Destination: outs[p.out].dest,
		}
		// An equally near pairing forfeited by this resolution means the
		// tie-break decided; surface it once, on the resolved pair.
		for _, alt := range viable[k+1:] {
			if alt.delta != p.delta {
				break
			}
			if (alt.out == p.out && !usedIn[alt.in]) || (alt.in == p.in && !usedOut[alt.out]) {
				pair.Warning = &Warning{
					Code:   WarnPairingAmbiguous,
					DutyID: pair.Outbound.ID,
					Message: fmt.Sprintf("multiple pairings for %s at %s %d day(s) apart; picked %s",
						pair.Outbound.ID, pair.Destination, p.delta, pair.Inbound.ID),
				}
				break
			}
		}
		pairs = append(pairs, pair)
	}
	return pairs, legWarnings
}
