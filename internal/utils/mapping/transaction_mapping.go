package mapping

import (
	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	"github.com/dhanrajs/fx_exchange_app/internal/models"
)

// ToModelTransaction converts a domain transaction for DB storage.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	m := models.Transaction{
		TransactionID:    d.TransactionID,
		TransactionType:  models.TransactionType(d.Type),
		CurrencyCode:     d.CurrencyCode,
		Amount:           d.Amount,
		ExchangeRate:     d.ExchangeRate,
		AmountSettlement: d.AmountSettlement,
		CustomerName:     d.CustomerName,
		CustomerEmail:    d.CustomerEmail,
		Notes:            d.Notes,
		Signature:        d.Signature,
		Status:           models.TransactionStatus(d.Status),
		AuditFields:      ToModelAuditFields(d.AuditFields),
		ReversedAt:       d.ReversedAt,
	}
	if d.ReversedBy != "" {
		by := d.ReversedBy
		m.ReversedBy = &by
	}
	return m
}

// ToDomainTransaction converts a stored transaction to its domain form.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	d := domain.Transaction{
		TransactionID:    m.TransactionID,
		Type:             domain.TransactionType(m.TransactionType),
		CurrencyCode:     m.CurrencyCode,
		Amount:           m.Amount,
		ExchangeRate:     m.ExchangeRate,
		AmountSettlement: m.AmountSettlement,
		CustomerName:     m.CustomerName,
		CustomerEmail:    m.CustomerEmail,
		Notes:            m.Notes,
		Signature:        m.Signature,
		Status:           domain.TransactionStatus(m.Status),
		AuditFields:      ToDomainAuditFields(m.AuditFields),
		ReversedAt:       m.ReversedAt,
	}
	if m.ReversedBy != nil {
		d.ReversedBy = *m.ReversedBy
	}
	return d
}

// ToDomainTransactionSlice converts a slice of stored transactions.
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}

// ToModelEntry converts a domain entry for DB storage.
func ToModelEntry(d domain.Entry) models.TransactionEntry {
	return models.TransactionEntry{
		EntryID:       d.EntryID,
		TransactionID: d.TransactionID,
		CurrencyCode:  d.CurrencyCode,
		Delta:         d.Delta,
	}
}

// ToDomainEntry converts a stored entry to its domain form.
func ToDomainEntry(m models.TransactionEntry) domain.Entry {
	return domain.Entry{
		EntryID:       m.EntryID,
		TransactionID: m.TransactionID,
		CurrencyCode:  m.CurrencyCode,
		Delta:         m.Delta,
	}
}

// ToDomainEntrySlice converts a slice of stored entries.
func ToDomainEntrySlice(ms []models.TransactionEntry) []domain.Entry {
	ds := make([]domain.Entry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainEntry(m)
	}
	return ds
}
