package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	cartResponse "github.com/Alturino/focushoney/cart/pkg/response"
	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
	"github.com/Alturino/focushoney/internal/otel"
	"github.com/Alturino/focushoney/internal/repository"
	orderResponse "github.com/Alturino/focushoney/order/pkg/response"
)

// Store keeps carts as carts/{uid} documents, next to the users and orders collections.
type Store struct {
	db  *mongo.Database
	now func() time.Time
}

var _ repository.Store = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) EnsureIndexes(c context.Context) error {
	_, err := s.db.Collection(collectionUsers).Indexes().CreateOne(c, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed creating users email index with error=%w", err)
	}
	_, err = s.db.Collection(collectionOrders).Indexes().CreateOne(c, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed creating orders user index with error=%w", err)
	}
	paymentRefOptions := options.Index().
		SetUnique(true).
		SetPartialFilterExpression(bson.D{{Key: "paymentRef", Value: bson.D{{Key: "$exists", Value: true}}}})
	_, err = s.db.Collection(collectionOrders).Indexes().CreateOne(c, mongo.IndexModel{
		Keys:    bson.D{{Key: "paymentRef", Value: 1}},
		Options: paymentRefOptions,
	})
	if err != nil {
		return fmt.Errorf("failed creating orders payment reference index with error=%w", err)
	}
	return nil
}

func (s *Store) InsertUser(c context.Context, arg repository.InsertUserParams) (repository.User, error) {
	c, span := otel.Tracer.Start(c, "mongostore InsertUser")
	defer span.End()

	now := s.now()
	doc := userDocument{
		CreatedAt:   now,
		UpdatedAt:   now,
		ID:          arg.ID.String(),
		Email:       arg.Email,
		DisplayName: arg.DisplayName,
		Password:    arg.Password,
	}
	if _, err := s.db.Collection(collectionUsers).InsertOne(c, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			err = errors.Join(err, commonErrors.ErrUserAlreadyExists)
		} else {
			err = errors.Join(err, commonErrors.ErrPersistence)
		}
		err = fmt.Errorf("failed inserting user with error=%w", err)
		otel.RecordError(err, span)
		return repository.User{}, err
	}
	return doc.user()
}

func (s *Store) FindUserByEmail(c context.Context, email string) (repository.User, error) {
	c, span := otel.Tracer.Start(c, "mongostore FindUserByEmail")
	defer span.End()

	doc := userDocument{}
	err := s.db.Collection(collectionUsers).FindOne(c, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.User{}, commonErrors.ErrUserNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed finding user with error=%w", errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		return repository.User{}, err
	}
	return doc.user()
}

func (s *Store) FindCart(c context.Context, userID uuid.UUID) ([]cartResponse.CartItem, bool, error) {
	c, span := otel.Tracer.Start(c, "mongostore FindCart")
	defer span.End()

	doc := cartDocument{}
	err := s.db.Collection(collectionCarts).FindOne(c, bson.M{"_id": userID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		err = fmt.Errorf("failed finding cart with error=%w", errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		return nil, false, err
	}

	items, err := doc.items()
	if err != nil {
		err = fmt.Errorf("failed decoding cart with error=%w", errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		return nil, false, err
	}
	return items, true, nil
}

func (s *Store) SaveCart(c context.Context, userID uuid.UUID, items []cartResponse.CartItem) error {
	c, span := otel.Tracer.Start(c, "mongostore SaveCart")
	defer span.End()

	doc := newCartDocument(userID, items, s.now())
	_, err := s.db.Collection(collectionCarts).ReplaceOne(
		c,
		bson.M{"_id": doc.UserID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		return err
	}
	return nil
}

func (s *Store) DeleteCart(c context.Context, userID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "mongostore DeleteCart")
	defer span.End()

	if _, err := s.db.Collection(collectionCarts).DeleteOne(c, bson.M{"_id": userID.String()}); err != nil {
		err = fmt.Errorf("failed deleting cart with error=%w", errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		return err
	}
	return nil
}

func (s *Store) InsertOrder(c context.Context, order orderResponse.Order) (orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "mongostore InsertOrder")
	defer span.End()

	if order.CreatedAt.IsZero() {
		order.CreatedAt = s.now()
	}
	order.CreatedAt = order.CreatedAt.UTC().Truncate(time.Millisecond)

	if _, err := s.db.Collection(collectionOrders).InsertOne(c, newOrderDocument(order)); err != nil {
		// the only unique key on orders besides _id is paymentRef
		if mongo.IsDuplicateKeyError(err) && order.PaymentRef != "" {
			err = errors.Join(err, commonErrors.ErrPaymentRefUsed, commonErrors.ErrVerificationFailed)
		} else {
			err = errors.Join(err, commonErrors.ErrPersistence)
		}
		err = fmt.Errorf("failed inserting order with error=%w", err)
		otel.RecordError(err, span)
		return orderResponse.Order{}, err
	}
	return order, nil
}

func (s *Store) FindOrdersByUserID(c context.Context, userID uuid.UUID) ([]orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "mongostore FindOrdersByUserID")
	defer span.End()

	cursor, err := s.db.Collection(collectionOrders).Find(
		c,
		bson.M{"userId": userID.String()},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		return nil, err
	}

	docs := []orderDocument{}
	if err = cursor.All(c, &docs); err != nil {
		err = fmt.Errorf("failed decoding orders with error=%w", errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		return nil, err
	}

	orders := make([]orderResponse.Order, 0, len(docs))
	for _, doc := range docs {
		order, err := doc.order()
		if err != nil {
			err = fmt.Errorf("failed mapping order id=%s with error=%w", doc.ID, errors.Join(err, commonErrors.ErrPersistence))
			otel.RecordError(err, span)
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *Store) FindOrderByID(c context.Context, userID uuid.UUID, orderID uuid.UUID) (orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "mongostore FindOrderByID")
	defer span.End()

	doc := orderDocument{}
	err := s.db.Collection(collectionOrders).
		FindOne(c, bson.M{"_id": orderID.String(), "userId": userID.String()}).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return orderResponse.Order{}, commonErrors.ErrOrderNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", errors.Join(err, commonErrors.ErrPersistence))
		otel.RecordError(err, span)
		return orderResponse.Order{}, err
	}
	return doc.order()
}
