package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"marketplace/internal/apperr"
	"marketplace/internal/domain"
	"marketplace/internal/infra/mailer"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrSellerNotFound = apperr.NotFound("seller not found")

type ApprovalResult struct {
	Seller       *domain.User `json:"seller"`
	EmailSent    bool         `json:"emailSent"`
	Warning      string       `json:"warning,omitempty"`
	TempPassword string       `json:"tempPassword,omitempty"`
}

type SellerService struct {
	users    repository.UserRepository
	notifier *NotificationService
	mailer   mailer.Sender
}

func NewSellerService(u repository.UserRepository, n *NotificationService, m mailer.Sender) *SellerService {
	return &SellerService{users: u, notifier: n, mailer: m}
}

func (s *SellerService) Register(ctx context.Context, name, email string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("a valid email is required")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("email %s is already registered", email)
	}

	seller := &domain.User{Name: name, Email: email, Role: domain.RoleSeller}
	if err := s.users.Create(ctx, seller); err != nil {
		return nil, err
	}
	s.notifier.NotifySellerRegistered(ctx, seller)
	return seller, nil
}

// Approve activates the seller with a fresh temporary password and emails it.
// A failed email does not undo the approval; the password is returned so an
// admin can pass it on.
func (s *SellerService) Approve(ctx context.Context, who domain.Principal, sellerID uint64) (*ApprovalResult, error) {
	if !who.IsAdmin() {
		return nil, apperr.Authorization("only admins can approve sellers")
	}
	seller, err := s.users.FindByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if seller == nil {
		return nil, ErrSellerNotFound
	}
	if seller.Role != domain.RoleSeller {
		return nil, apperr.Validation("user %d is not a seller", sellerID)
	}

	temp := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	hash, err := bcrypt.GenerateFromPassword([]byte(temp), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if err := s.users.Approve(ctx, sellerID, string(hash)); err != nil {
		return nil, err
	}
	seller.Approved = true
	seller.PasswordHash = string(hash)

	res := &ApprovalResult{Seller: seller}
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your seller account has been approved.</p><p>Email: %s<br>Temporary password: <b>%s</b></p><p>Please change it after signing in.</p>",
		seller.Name, seller.Email, temp)
	if err := s.mailer.Send(ctx, seller.Email, "Your seller account is approved", body); err != nil {
		zap.L().Warn("sellers: credential email failed", zap.Uint64("seller_id", sellerID), zap.Error(err))
		res.Warning = "seller approved, but the credentials email could not be sent; relay the temporary password manually"
		res.TempPassword = temp
		return res, nil
	}
	res.EmailSent = true
	return res, nil
}

func (s *SellerService) ListPending(ctx context.Context, who domain.Principal) ([]domain.User, error) {
	if !who.IsAdmin() {
		return nil, apperr.Authorization("admin only")
	}
	return s.users.ListPendingSellers(ctx)
}
