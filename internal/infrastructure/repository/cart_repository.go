package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/retailpos-api/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// cartDocument is the stored shape of a cart, keyed by user id
type cartDocument struct {
	UserID    string              `bson:"_id"`
	Items     []cartEntryDocument `bson:"items"`
	UpdatedAt time.Time           `bson:"updated_at"`
}

type cartEntryDocument struct {
	ItemID   string    `bson:"item_id"`
	Quantity int       `bson:"quantity"`
	AddedAt  time.Time `bson:"added_at"`
}

type cartRepository struct {
	coll *mongo.Collection
}

// NewCartRepository creates a cart repository over a MongoDB collection
func NewCartRepository(coll *mongo.Collection) domainRepo.CartRepository {
	return &cartRepository{coll: coll}
}

func (r *cartRepository) Get(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	var doc cartDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": userID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return entity.NewCart(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toEntity()
}

func (r *cartRepository) Save(ctx context.Context, cart *entity.Cart) error {
	doc := newCartDocument(cart)
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": doc.UserID},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *cartRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": userID.String()})
	return err
}

func (r *cartRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"updated_at": bson.M{"$lt": before}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func newCartDocument(cart *entity.Cart) cartDocument {
	doc := cartDocument{
		UserID:    cart.UserID.String(),
		Items:     make([]cartEntryDocument, 0, len(cart.Entries)),
		UpdatedAt: cart.UpdatedAt,
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}
	for _, e := range cart.Entries {
		doc.Items = append(doc.Items, cartEntryDocument{
			ItemID:   e.ItemID.String(),
			Quantity: e.Quantity,
			AddedAt:  e.AddedAt,
		})
	}
	return doc
}

func (d cartDocument) toEntity() (*entity.Cart, error) {
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("cart %q: %w", d.UserID, err)
	}
	cart := &entity.Cart{
		UserID:    userID,
		Entries:   make([]entity.CartEntry, 0, len(d.Items)),
		UpdatedAt: d.UpdatedAt,
	}
	for _, it := range d.Items {
		itemID, err := uuid.Parse(it.ItemID)
		if err != nil {
			return nil, fmt.Errorf("cart %q item %q: %w", d.UserID, it.ItemID, err)
		}
		cart.Entries = append(cart.Entries, entity.CartEntry{
			ItemID:   itemID,
			Quantity: it.Quantity,
			AddedAt:  it.AddedAt,
		})
	}
	return cart, nil
}
