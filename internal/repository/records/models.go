package records

import (
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

type certificateRow struct {
	ID                string                                   `gorm:"primaryKey;type:varchar(36)"`
	ContentHash       string                                   `gorm:"type:varchar(64);not null;uniqueIndex:uniq_certificates_content_hash"`
	ContentLocator    string                                   `gorm:"type:varchar(128);not null"`
	MetadataLocator   string                                   `gorm:"type:varchar(128);not null"`
	ContentType       string                                   `gorm:"type:varchar(128)"`
	IssuerIdentity    string                                   `gorm:"type:varchar(64);not null;index"`
	SubjectReference  string                                   `gorm:"type:varchar(256);not null"`
	CourseMetadata    datatypes.JSONType[model.CourseMetadata] `gorm:"not null"`
	Status            string                                   `gorm:"type:varchar(16);not null;index"`
	LedgerTxReference *string                                  `gorm:"type:varchar(66);uniqueIndex:uniq_certificates_tx_reference"`
	FailureReason     string                                   `gorm:"type:text"`
	IssuedAt          time.Time                                `gorm:"not null;autoCreateTime:false"`
	UpdatedAt         time.Time                                `gorm:"not null;autoUpdateTime:false"`
}

func (certificateRow) TableName() string {
	return "certificates"
}

type taskRow struct {
	ContentHash   string    `gorm:"primaryKey;type:varchar(64)"`
	RecordID      string    `gorm:"type:varchar(36);not null;uniqueIndex"`
	TxHandle      string    `gorm:"type:varchar(66)"`
	Attempts      int       `gorm:"not null;default:0"`
	NextAttemptAt time.Time `gorm:"not null;index"`
	LeaseUntil    time.Time `gorm:"not null"`
	LeaseVersion  int64     `gorm:"not null;default:0"`
	LastError     string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (taskRow) TableName() string {
	return "issuance_tasks"
}

func toCertificateRow(rec *model.CertificateRecord) certificateRow {
	row := certificateRow{
		ID:               rec.ID,
		ContentHash:      rec.ContentHash,
		ContentLocator:   string(rec.ContentLocator),
		MetadataLocator:  string(rec.MetadataLocator),
		ContentType:      rec.ContentType,
		IssuerIdentity:   rec.IssuerIdentity,
		SubjectReference: rec.SubjectReference,
		CourseMetadata:   datatypes.NewJSONType(rec.CourseMetadata),
		Status:           string(rec.Status),
		FailureReason:    rec.FailureReason,
		IssuedAt:         rec.IssuedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
	if rec.LedgerTxReference != "" {
		ref := string(rec.LedgerTxReference)
		row.LedgerTxReference = &ref
	}
	return row
}

func (row certificateRow) toModel() (*model.CertificateRecord, error) {
	status := model.Status(row.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("record %s has unknown status %q", row.ID, row.Status)
	}
	rec := &model.CertificateRecord{
		ID:               row.ID,
		ContentHash:      row.ContentHash,
		ContentLocator:   model.Locator(row.ContentLocator),
		MetadataLocator:  model.Locator(row.MetadataLocator),
		ContentType:      row.ContentType,
		IssuerIdentity:   row.IssuerIdentity,
		SubjectReference: row.SubjectReference,
		CourseMetadata:   row.CourseMetadata.Data(),
		Status:           status,
		FailureReason:    row.FailureReason,
		IssuedAt:         row.IssuedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
	if row.LedgerTxReference != nil {
		rec.LedgerTxReference = model.TxReference(*row.LedgerTxReference)
	}
	return rec, nil
}

func (row taskRow) toModel() model.IssuanceTask {
	return model.IssuanceTask{
		ContentHash:   row.ContentHash,
		RecordID:      row.RecordID,
		TxHandle:      model.TxHandle(row.TxHandle),
		Attempts:      row.Attempts,
		NextAttemptAt: row.NextAttemptAt.UTC(),
		LeaseUntil:    row.LeaseUntil.UTC(),
		LastError:     row.LastError,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}
