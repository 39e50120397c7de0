// Package kyc models identity verification records.
package kyc

import (
	"strings"
	"time"

	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/google/uuid"
)

// Status of a KYC submission.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Submission is the data a user sends for verification.
type Submission struct {
	FullName         string
	CPF              string
	BirthDate        time.Time
	DocumentFrontURL string
	DocumentBackURL  string
	SelfieURL        string
}

// Record is a single KYC submission and its review outcome.
type Record struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	FullName         string
	CPF              string
	BirthDate        time.Time
	DocumentFrontURL string
	DocumentBackURL  string
	SelfieURL        string
	Status           Status
	ExpiresAt        *time.Time
	ReviewedBy       *uuid.UUID
	ReviewedAt       *time.Time
	ReviewComment    string
	SubmittedAt      time.Time
}

// NewRecord validates s and returns a pending record. The stored CPF keeps
// digits only.
func NewRecord(userID uuid.UUID, s Submission, at time.Time) (*Record, error) {
	if userID == uuid.Nil || strings.TrimSpace(s.FullName) == "" {
		return nil, domain.ErrValidation
	}
	if !ValidCPF(s.CPF) {
		return nil, domain.ErrInvalidCPF
	}
	return &Record{
		ID:               uuid.New(),
		UserID:           userID,
		FullName:         strings.TrimSpace(s.FullName),
		CPF:              NormalizeDigits(s.CPF),
		BirthDate:        s.BirthDate,
		DocumentFrontURL: s.DocumentFrontURL,
		DocumentBackURL:  s.DocumentBackURL,
		SelfieURL:        s.SelfieURL,
		Status:           StatusPending,
		SubmittedAt:      at,
	}, nil
}

// IsValidAt reports whether the record grants withdrawal rights at now.
func (r *Record) IsValidAt(now time.Time) bool {
	if r.Status != StatusApproved {
		return false
	}
	return r.ExpiresAt == nil || !r.ExpiresAt.Before(now)
}

// IsActive reports whether the record blocks a new submission: pending, or
// approved and not yet expired.
func (r *Record) IsActive(now time.Time) bool {
	return r.Status == StatusPending || r.IsValidAt(now)
}

// Approve marks a pending record approved until at+validity.
func (r *Record) Approve(adminID uuid.UUID, comment string, validity time.Duration, at time.Time) error {
	if r.Status != StatusPending {
		return domain.ErrInvalidTransition
	}
	expires := at.Add(validity)
	r.Status = StatusApproved
	r.ExpiresAt = &expires
	r.review(adminID, comment, at)
	return nil
}

// Reject marks a pending record rejected. A reason is mandatory.
func (r *Record) Reject(adminID uuid.UUID, reason string, at time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return domain.ErrCommentRequired
	}
	if r.Status != StatusPending {
		return domain.ErrInvalidTransition
	}
	r.Status = StatusRejected
	r.review(adminID, reason, at)
	return nil
}

// Expire flips an approved record whose validity has lapsed.
func (r *Record) Expire(now time.Time) bool {
	if r.Status != StatusApproved || r.ExpiresAt == nil || !r.ExpiresAt.Before(now) {
		return false
	}
	r.Status = StatusExpired
	return true
}

func (r *Record) review(adminID uuid.UUID, comment string, at time.Time) {
	r.ReviewedBy = &adminID
	r.ReviewedAt = &at
	r.ReviewComment = strings.TrimSpace(comment)
}
