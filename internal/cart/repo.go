package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grengcry/cart-service/pkg/db"
	"github.com/grengcry/cart-service/pkg/db/models"
	pkgerrors "github.com/grengcry/cart-service/pkg/errors"
)

// DBSnapshotStore persists cart snapshots in the carts/cart_items tables,
// the durable alternative to the Redis store.
type DBSnapshotStore struct {
	client *db.Client
}

func NewDBSnapshotStore(client *db.Client) *DBSnapshotStore {
	return &DBSnapshotStore{client: client}
}

func (s *DBSnapshotStore) Load(ctx context.Context, sessionID string) (*Snapshot, error) {
	var record models.CartRecord
	err := s.client.DB().WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart record")
	}

	var rows []models.CartItem
	err = s.client.DB().WithContext(ctx).
		Where("cart_id = ?", record.ID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
	}

	snap := Snapshot{Items: make([]SnapshotItem, 0, len(rows))}
	for _, row := range rows {
		snap.Items = append(snap.Items, SnapshotItem{
			ID:             NewItemKey(row.ProductID, row.UnitLabel).String(),
			ProductID:      row.ProductID,
			Name:           row.Name,
			Price:          row.UnitPrice,
			Qty:            row.Qty,
			UnitLabel:      row.UnitLabel,
			UnitMultiplier: row.UnitMultiplier,
			Image:          row.Image,
		})
	}
	return &snap, nil
}

func (s *DBSnapshotStore) Save(ctx context.Context, sessionID string, snap Snapshot) error {
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var record models.CartRecord
		err := tx.Where("session_id = ?", sessionID).First(&record).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = models.CartRecord{ID: uuid.New(), SessionID: sessionID}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		if err := tx.Where("cart_id = ?", record.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if len(snap.Items) == 0 {
			return nil
		}

		rows := make([]models.CartItem, 0, len(snap.Items))
		for i, line := range snap.Items {
			rows = append(rows, models.CartItem{
				ID:             uuid.New(),
				CartID:         record.ID,
				Position:       i,
				ProductID:      line.ProductID,
				UnitLabel:      line.UnitLabel,
				Name:           line.Name,
				UnitPrice:      line.Price,
				UnitMultiplier: line.UnitMultiplier,
				Qty:            line.Qty,
				Image:          line.Image,
			})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart snapshot")
	}
	return nil
}

func (s *DBSnapshotStore) Delete(ctx context.Context, sessionID string) error {
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var record models.CartRecord
		err := tx.Where("session_id = ?", sessionID).First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", record.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&record).Error
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart snapshot")
	}
	return nil
}
