// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package consensus

import (
	"sort"

	"github.com/danielhkuo/quickly-plan/models"
)

// Input is everything the evaluator reads. Nothing here is mutated.
type Input struct {
	Options         []models.Option
	Votes           []models.Vote
	Roster          []string
	Threshold       float64
	MinParticipants int
}

// OptionTally is the computed standing of a single option
type OptionTally struct {
	OptionID       string
	Position       int
	VoteCount      int
	PreferredCount int
	// Percentage is VoteCount over the roster size, the authoritative figure.
	Percentage float64
	// VotesCastShare is VoteCount over all counted votes. Display only.
	VotesCastShare float64
}

// Result of one evaluation
type Result struct {
	Options          []OptionTally // creation order
	Leading          *OptionTally
	RosterSize       int
	DistinctVoters   int
	NonVoters        []string
	ConsensusReached bool
}

// Evaluate tallies votes against the roster and decides whether the leading
// option has reached consensus. Votes from users outside the roster or for
// options outside the poll are ignored, and duplicate (user, option) rows
// count once. Zero options or an empty roster never reach consensus.
func Evaluate(in Input) Result {
	roster := make(map[string]bool, len(in.Roster))
	for _, userID := range in.Roster {
		roster[userID] = true
	}

	options := make([]models.Option, len(in.Options))
	copy(options, in.Options)
	sort.SliceStable(options, func(i, j int) bool {
		if options[i].Position != options[j].Position {
			return options[i].Position < options[j].Position
		}
		return options[i].ID < options[j].ID
	})

	index := make(map[string]int, len(options))
	tallies := make([]OptionTally, len(options))
	for i, opt := range options {
		index[opt.ID] = i
		tallies[i] = OptionTally{OptionID: opt.ID, Position: opt.Position}
	}

	type pair struct{ user, option string }
	seen := make(map[pair]bool, len(in.Votes))
	voters := make(map[string]bool)
	counted := 0
	for _, v := range in.Votes {
		i, ok := index[v.OptionID]
		if !ok || !roster[v.UserID] {
			continue
		}
		key := pair{v.UserID, v.OptionID}
		if seen[key] {
			continue
		}
		seen[key] = true
		voters[v.UserID] = true
		counted++
		tallies[i].VoteCount++
		if v.Preferred {
			tallies[i].PreferredCount++
		}
	}

	res := Result{
		RosterSize:     len(roster),
		DistinctVoters: len(voters),
	}

	for i := range tallies {
		if res.RosterSize > 0 {
			tallies[i].Percentage = float64(tallies[i].VoteCount) * 100 / float64(res.RosterSize)
		}
		if counted > 0 {
			tallies[i].VotesCastShare = float64(tallies[i].VoteCount) * 100 / float64(counted)
		}
	}
	res.Options = tallies

	// Strict > keeps the earliest option on ties.
	lead := -1
	for i, t := range tallies {
		if t.VoteCount == 0 {
			continue
		}
		if lead < 0 || t.VoteCount > tallies[lead].VoteCount {
			lead = i
		}
	}
	if lead >= 0 {
		leading := tallies[lead]
		res.Leading = &leading
	}

	for userID := range roster {
		if !voters[userID] {
			res.NonVoters = append(res.NonVoters, userID)
		}
	}
	sort.Strings(res.NonVoters)

	res.ConsensusReached = res.Leading != nil &&
		res.RosterSize > 0 &&
		meetsThreshold(res.Leading.VoteCount, res.RosterSize, in.Threshold) &&
		res.DistinctVoters >= in.MinParticipants

	return res
}

// meetsThreshold compares count/roster*100 >= threshold without dividing,
// so exactly-at-threshold shares are not lost to rounding.
func meetsThreshold(count, rosterSize int, threshold float64) bool {
	return float64(count)*100 >= threshold*float64(rosterSize)
}

// Tally returns the tally for optionID, or a zero tally if it is unknown.
func (r Result) Tally(optionID string) OptionTally {
	for _, t := range r.Options {
		if t.OptionID == optionID {
			return t
		}
	}
	return OptionTally{OptionID: optionID}
}
