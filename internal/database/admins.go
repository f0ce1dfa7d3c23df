package database

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"bitesquicky/internal/apperr"
	"bitesquicky/internal/logger"
	"bitesquicky/internal/models"
)

func (s *Store) AdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var admin models.Admin
	err := s.col(colAdmins).FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&admin)
	if err != nil {
		return nil, classify("admins.get", err)
	}
	return &admin, nil
}

// EnsureAdmin creates the bootstrap admin when no account with that email exists.
func (s *Store) EnsureAdmin(ctx context.Context, email, password string) error {
	const op = "admins.ensure"
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	_, err := s.AdminByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !apperr.IsNotFound(err) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Persistence(op, apperr.CodeInternal, err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err = s.col(colAdmins).InsertOne(ctx, models.Admin{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Password:  string(hash),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return classify(op, err)
	}
	logger.Area("AUTH").Info("bootstrap admin created", zap.String("email", email))
	return nil
}
