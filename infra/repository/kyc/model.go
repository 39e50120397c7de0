package kyc

import (
	"time"

	"github.com/amirasaad/payminute/pkg/domain/kyc"
	"github.com/google/uuid"
)

// Record represents a KYC submission in the database.
type Record struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index"`
	FullName         string    `gorm:"not null"`
	CPF              string    `gorm:"type:varchar(11);not null"`
	BirthDate        time.Time `gorm:"type:date"`
	DocumentFrontURL string
	DocumentBackURL  string
	SelfieURL        string
	Status           string `gorm:"type:varchar(16);not null"`
	ExpiresAt        *time.Time
	ReviewedBy       *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt       *time.Time
	ReviewComment    string
	SubmittedAt      time.Time `gorm:"not null"`
}

// TableName specifies the table name for the Record model.
func (Record) TableName() string {
	return "kyc_records"
}

func mapDomainToModel(r *kyc.Record) Record {
	return Record{
		ID:               r.ID,
		UserID:           r.UserID,
		FullName:         r.FullName,
		CPF:              r.CPF,
		BirthDate:        r.BirthDate,
		DocumentFrontURL: r.DocumentFrontURL,
		DocumentBackURL:  r.DocumentBackURL,
		SelfieURL:        r.SelfieURL,
		Status:           string(r.Status),
		ExpiresAt:        r.ExpiresAt,
		ReviewedBy:       r.ReviewedBy,
		ReviewedAt:       r.ReviewedAt,
		ReviewComment:    r.ReviewComment,
		SubmittedAt:      r.SubmittedAt,
	}
}

func mapModelToDomain(m *Record) *kyc.Record {
	return &kyc.Record{
		ID:               m.ID,
		UserID:           m.UserID,
		FullName:         m.FullName,
		CPF:              m.CPF,
		BirthDate:        m.BirthDate,
		DocumentFrontURL: m.DocumentFrontURL,
		DocumentBackURL:  m.DocumentBackURL,
		SelfieURL:        m.SelfieURL,
		Status:           kyc.Status(m.Status),
		ExpiresAt:        m.ExpiresAt,
		ReviewedBy:       m.ReviewedBy,
		ReviewedAt:       m.ReviewedAt,
		ReviewComment:    m.ReviewComment,
		SubmittedAt:      m.SubmittedAt,
	}
}
