// Package accounts implements the account handler: login, creation, and
// password edit, against the keyed byte store. Logout touches no account
// state and is handled by the multiplexer, which closes the session.
package accounts

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sync"

	"github.com/glennswest/chatd/internal/protocol"
	"github.com/glennswest/chatd/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// record is the persisted shape of an account, keyed by "account:"+username.
type record struct {
	UserID       uint16 `json:"user_id"`
	PasswordHash []byte `json:"password_hash"`
}

const accountKeyPrefix = "account:"

func accountKey(username string) string { return accountKeyPrefix + username }

// Handler implements ACC_LOGIN, ACC_CREATE, and ACC_EDIT against a Store. A single mutex serializes the read-modify-write of the USER_PK
// counter; every other store access is independently atomic per key.
type Handler struct {
	store store.Store

	mu        sync.Mutex
	userIndex uint32
}

// New loads the persisted USER_PK counter (defaulting to 0) and returns a
// ready Handler.
func New(ctx context.Context, s store.Store) (*Handler, error) {
	h := &Handler{store: s}

	raw, ok, err := s.Get(ctx, store.PKKey)
	if err != nil {
		return nil, err
	}
	if ok && len(raw) == 4 {
		h.userIndex = binary.BigEndian.Uint32(raw)
	}
	return h, nil
}

// UserIndex returns the in-memory user-PK counter, for diagnostics and for
// the tick-driven persistence sync.
func (h *Handler) UserIndex() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.userIndex
}

// SyncUserIndex persists the current in-memory USER_PK counter. Called on
// every tick by the multiplexer; a failure here is fatal to the server loop.
func (h *Handler) SyncUserIndex(ctx context.Context) error {
	h.mu.Lock()
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, h.userIndex)
	h.mu.Unlock()
	return h.store.Put(ctx, store.PKKey, buf)
}

func (h *Handler) load(ctx context.Context, username string) (record, bool, error) {
	raw, ok, err := h.store.Get(ctx, accountKey(username))
	if err != nil || !ok {
		return record{}, ok, err
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return record{}, false, err
	}
	return rec, true, nil
}

func (h *Handler) save(ctx context.Context, username string, rec record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return h.store.Put(ctx, accountKey(username), raw)
}

// Login verifies username/password and returns the account's user_id.
func (h *Handler) Login(ctx context.Context, p protocol.LoginPayload) (uint16, error) {
	rec, ok, err := h.load(ctx, p.Username)
	if err != nil {
		return 0, protocol.Coded(protocol.ECServer)
	}
	if !ok {
		return 0, protocol.Coded(protocol.ECInvUserID)
	}
	if bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(p.Password)) != nil {
		return 0, protocol.Coded(protocol.ECInvAuthInfo)
	}
	return rec.UserID, nil
}

// Create registers a new account, incrementing USER_PK exactly once on
// success and assigning the new counter value as the account's user_id.
func (h *Handler) Create(ctx context.Context, p protocol.LoginPayload) (uint16, error) {
	if _, ok, err := h.load(ctx, p.Username); err != nil {
		return 0, protocol.Coded(protocol.ECServer)
	} else if ok {
		return 0, protocol.Coded(protocol.ECUserExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, protocol.Coded(protocol.ECServer)
	}

	h.mu.Lock()
	h.userIndex++
	userID := h.userIndex
	h.mu.Unlock()

	if err := h.save(ctx, p.Username, record{UserID: uint16(userID), PasswordHash: hash}); err != nil {
		h.mu.Lock()
		h.userIndex--
		h.mu.Unlock()
		return 0, protocol.Coded(protocol.ECServer)
	}
	return uint16(userID), nil
}

// Edit changes the password for the given username, preserving its user_id.
func (h *Handler) Edit(ctx context.Context, username string, p protocol.EditPayload) error {
	rec, ok, err := h.load(ctx, username)
	if err != nil {
		return protocol.Coded(protocol.ECServer)
	}
	if !ok {
		return protocol.Coded(protocol.ECInvUserID)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return protocol.Coded(protocol.ECServer)
	}
	rec.PasswordHash = hash
	if err := h.save(ctx, username, rec); err != nil {
		return protocol.Coded(protocol.ECServer)
	}
	return nil
}

