package retention

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/novora/compliance-api/internal/system/constants"
	"github.com/novora/compliance-api/internal/system/kv"
	"github.com/novora/compliance-api/internal/system/log"
	"github.com/novora/compliance-api/internal/system/utils"
)

// recordDates probes a stored record for whichever date field its entity
// kind carries.
type recordDates struct {
	ConsentDate int64 `json:"consentDate"`
	RequestDate int64 `json:"requestDate"`
	Timestamp   int64 `json:"timestamp"`
}

func (d *recordDates) effective() int64 {
	switch {
	case d.ConsentDate != 0:
		return d.ConsentDate
	case d.RequestDate != 0:
		return d.RequestDate
	default:
		return d.Timestamp
	}
}

// StoreDeleter enforces retention directly against the record store: keyed
// entities older than the retention window are deleted, the audit list is
// trimmed at its first expired entry (entries are newest-first, so every
// later entry is expired too).
type StoreDeleter struct {
	store  kv.Store
	logger *log.Logger
}

func NewStoreDeleter(store kv.Store) *StoreDeleter {
	return &StoreDeleter{
		store:  store,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "StoreDeleter")),
	}
}

func (d *StoreDeleter) DeleteExpired(ctx context.Context, policy RetentionPolicy) error {
	cutoff := utils.GetCurrentTimeMillis() - int64(policy.RetentionPeriod)*int64(24*time.Hour/time.Millisecond)

	if policy.DataType == constants.KeyAuditLogs {
		return d.trimAuditLogs(ctx, cutoff)
	}
	return d.deleteExpiredKeys(ctx, policy.DataType+":", cutoff)
}

func (d *StoreDeleter) trimAuditLogs(ctx context.Context, cutoff int64) error {
	values, err := d.store.Range(ctx, constants.KeyAuditLogs, 0, -1)
	if err != nil {
		return fmt.Errorf("failed to read audit trail: %w", err)
	}

	keep := int64(len(values))
	for i, value := range values {
		var dates recordDates
		if err := json.Unmarshal(value, &dates); err != nil {
			continue
		}
		if dates.effective() < cutoff {
			keep = int64(i)
			break
		}
	}
	if keep == int64(len(values)) {
		return nil
	}

	d.logger.Info("Trimming audit trail",
		log.Int64("kept", keep),
		log.Int64("dropped", int64(len(values))-keep))
	return d.store.Trim(ctx, constants.KeyAuditLogs, keep)
}

func (d *StoreDeleter) deleteExpiredKeys(ctx context.Context, prefix string, cutoff int64) error {
	keys, err := d.store.Keys(ctx, prefix)
	if err != nil {
		return fmt.Errorf("failed to list keys under %q: %w", prefix, err)
	}

	deleted := 0
	for _, key := range keys {
		value, err := d.store.Get(ctx, key)
		if err != nil {
			continue
		}
		var dates recordDates
		if err := json.Unmarshal(value, &dates); err != nil {
			continue
		}
		recordDate := dates.effective()
		if recordDate == 0 || recordDate >= cutoff {
			continue
		}
		if err := d.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete expired record %q: %w", key, err)
		}
		deleted++
	}

	if deleted > 0 {
		d.logger.Info("Deleted expired records",
			log.String("prefix", prefix),
			log.Int("deleted", deleted))
	}
	return nil
}
