// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// PollStatus is the lifecycle state of a consensus poll
type PollStatus string

// Poll status constants
const (
	StatusActive           PollStatus = "active"
	StatusConsensusReached PollStatus = "consensus_reached"
	StatusExpired          PollStatus = "expired"
	StatusFinalized        PollStatus = "finalized"
)

// PlanStatus is the lifecycle state of the parent plan
type PlanStatus string

// Plan status constants
const (
	PlanDeciding  PlanStatus = "deciding"
	PlanConfirmed PlanStatus = "confirmed"
)

// Participant roles
const (
	RoleCreator = "creator"
	RoleMember  = "member"
)

// OptionKind tags what an option proposes
type OptionKind string

// Option kinds
const (
	KindGeneral  OptionKind = "general"
	KindTime     OptionKind = "time"
	KindPlace    OptionKind = "place"
	KindActivity OptionKind = "activity"
)

// Defaults applied when a poll is created without explicit rules
const (
	DefaultThreshold       = 60.0
	DefaultMinParticipants = 1
)

// Request types

type OptionInput struct {
	Kind        OptionKind `json:"kind,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	Price       *float64   `json:"price,omitempty"`
	URL         *string    `json:"url,omitempty"`
}

type CreatePlanRequest struct {
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	CreatorID       string        `json:"creator_id"`
	Participants    []string      `json:"participants"`
	PollTitle       string        `json:"poll_title"`
	Threshold       float64       `json:"threshold,omitempty"`
	MinParticipants int           `json:"min_participants,omitempty"`
	Deadline        *time.Time    `json:"deadline,omitempty"`
	AllowAddOptions *bool         `json:"allow_add_options,omitempty"`
	Options         []OptionInput `json:"options"`
}

type VoteRequest struct {
	UserID    string `json:"user_id"`
	OptionID  string `json:"option_id"`
	Preferred bool   `json:"preferred,omitempty"`
}

type ExtendDeadlineRequest struct {
	Deadline *time.Time `json:"deadline"`
}

type FinalizeRequest struct {
	WinningOptionID string `json:"winning_option_id,omitempty"`
}

// Response types

type CreatePlanResponse struct {
	PlanID    string   `json:"plan_id"`
	PollID    string   `json:"poll_id"`
	OptionIDs []string `json:"option_ids"`
	AdminKey  string   `json:"admin_key"`
}

type AddOptionResponse struct {
	OptionID string `json:"option_id"`
}

type VoteResult struct {
	PollID           string     `json:"poll_id"`
	OptionID         string     `json:"option_id"`
	UserID           string     `json:"user_id"`
	Added            bool       `json:"added"`
	VoteCount        int        `json:"vote_count"`
	Percentage       float64    `json:"percentage"`
	Status           PollStatus `json:"status"`
	ConsensusReached bool       `json:"consensus_reached"`
	WinningOptionID  *string    `json:"winning_option_id,omitempty"`
}

type ProjectedPlan struct {
	Plan            Plan            `json:"plan"`
	PollID          string          `json:"poll_id"`
	WinningOptionID string          `json:"winning_option_id"`
	ConfirmedFields ConfirmedFields `json:"confirmed_fields"`
}

type VotesResponse struct {
	PollID string `json:"poll_id"`
	Votes  []Vote `json:"votes"`
}

// Domain types

type Plan struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	CreatorID      string          `json:"creator_id"`
	Status         PlanStatus      `json:"status"`
	ActivePollID   *string         `json:"active_poll_id,omitempty"`
	Confirmed      ConfirmedFields `json:"confirmed"`
	ConfirmedAt    *time.Time      `json:"confirmed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	ParticipantIDs []string        `json:"participant_ids,omitempty"`
}

// ConfirmedFields are the option fields projected onto a plan
type ConfirmedFields struct {
	Title    *string    `json:"title,omitempty"`
	Location *string    `json:"location,omitempty"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	Price    *float64   `json:"price,omitempty"`
	URL      *string    `json:"url,omitempty"`
}

type Participant struct {
	PlanID   string    `json:"plan_id"`
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type Poll struct {
	ID              string     `json:"id"`
	PlanID          string     `json:"plan_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Status          PollStatus `json:"status"`
	Threshold       float64    `json:"threshold"`
	MinParticipants int        `json:"min_participants"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	AllowAddOptions bool       `json:"allow_add_options"`
	CreatorID       string     `json:"creator_id"`
	WinningOptionID *string    `json:"winning_option_id,omitempty"`
	ConsensusAt     *time.Time `json:"consensus_at,omitempty"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	FinalizedAt     *time.Time `json:"finalized_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type Option struct {
	ID          string     `json:"id"`
	PollID      string     `json:"poll_id"`
	Kind        OptionKind `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	Price       *float64   `json:"price,omitempty"`
	URL         *string    `json:"url,omitempty"`
	Position    int        `json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Vote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"poll_id"`
	OptionID  string    `json:"option_id"`
	UserID    string    `json:"user_id"`
	Preferred bool      `json:"preferred"`
	CreatedAt time.Time `json:"created_at"`
}

// Poll view types

type OptionResult struct {
	Option
	VoteCount      int     `json:"vote_count"`
	Percentage     float64 `json:"percentage"`
	VotesCastShare float64 `json:"votes_cast_share"`
	PreferredCount int     `json:"preferred_count"`
}

type ConsensusProgress struct {
	Threshold        float64 `json:"threshold"`
	MinParticipants  int     `json:"min_participants"`
	RosterSize       int     `json:"roster_size"`
	DistinctVoters   int     `json:"distinct_voters"`
	LeadingOptionID  *string `json:"leading_option_id,omitempty"`
	LeadingPercent   float64 `json:"leading_percentage"`
	ConsensusReached bool    `json:"consensus_reached"`
}

type PollView struct {
	Poll          Poll              `json:"poll"`
	Options       []OptionResult    `json:"options"`
	Progress      ConsensusProgress `json:"progress"`
	NonVoters     []string          `json:"non_voters"`
	DeadlineHuman string            `json:"deadline_human,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
