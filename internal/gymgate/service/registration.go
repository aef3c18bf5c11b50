package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tovigym/gymgate/internal/gymgate/store"
	"github.com/tovigym/gymgate/internal/gymgate/types"
	"github.com/tovigym/gymgate/internal/gymgate/vendorapi"
)

// defaultDoorID is the door privilege assigned to every newly registered
// person. Finer-grained door assignment lives in the settings UI, out of
// scope here.
const defaultDoorID = "1"

// RegistrationResult is what the UI toast is built from.
type RegistrationResult struct {
	Status            types.RegistrationStatus `json:"status"`
	CredentialType    types.CredentialType     `json:"credential_type"`
	CredentialValue   string                   `json:"credential_value,omitempty"`
	AlreadyRegistered bool                     `json:"already_registered"`
	Message           string                   `json:"message,omitempty"`
}

// RegistrationService registers members as credentialed persons on
// physical access devices.
type RegistrationService struct {
	members       store.MemberStore
	credentials   store.CredentialStore
	registrations store.RegistrationLogStore
	settings      store.SettingsStore
	tokens        *TokenManager
	vendor        vendorapi.Client
	logger        *zap.Logger
	now           func() time.Time
}

func NewRegistrationService(
	members store.MemberStore,
	credentials store.CredentialStore,
	registrations store.RegistrationLogStore,
	settings store.SettingsStore,
	tokens *TokenManager,
	vendor vendorapi.Client,
	logger *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		members:       members,
		credentials:   credentials,
		registrations: registrations,
		settings:      settings,
		tokens:        tokens,
		vendor:        vendor,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RegisterMember registers a member on the branch's devices of the given
// credential type. Re-registering an already-credentialed member is a
// success, not an error. Every attempt opens a pending registration-log
// entry and closes it exactly once with the terminal outcome.
func (s *RegistrationService) RegisterMember(ctx context.Context, memberID, branchID string, credType types.CredentialType) (RegistrationResult, error) {
	memberID = strings.TrimSpace(memberID)
	branchID = strings.TrimSpace(branchID)

	logID := uuid.NewString()
	if err := s.registrations.Create(ctx, store.RegistrationLogRecord{
		ID:         logID,
		MemberID:   memberID,
		BranchID:   branchID,
		DeviceType: string(credType),
		Action:     "register",
		Status:     types.RegistrationPending,
		CreatedAt:  s.now(),
	}); err != nil {
		return RegistrationResult{}, fmt.Errorf("open registration log: %w", err)
	}

	result, err := s.register(ctx, memberID, branchID, credType)

	// Terminal log update, exactly once.
	if err != nil {
		s.complete(ctx, logID, types.RegistrationFailed, "", err.Error())
		return RegistrationResult{Status: types.RegistrationFailed, CredentialType: credType, Message: err.Error()}, err
	}
	s.complete(ctx, logID, types.RegistrationSuccess, result.Message, "")
	return result, nil
}

func (s *RegistrationService) register(ctx context.Context, memberID, branchID string, credType types.CredentialType) (RegistrationResult, error) {
	member, err := s.members.Get(ctx, memberID)
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("look up member: %w", err)
	}
	if member == nil {
		return RegistrationResult{}, fmt.Errorf("%w: %s", ErrMemberNotFound, memberID)
	}

	// Idempotent re-registration: an existing active credential of the
	// requested type short-circuits to success.
	existing, err := s.credentials.Active(ctx, memberID, credType)
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("check existing credential: %w", err)
	}
	if existing != nil {
		return RegistrationResult{
			Status:            types.RegistrationSuccess,
			CredentialType:    credType,
			CredentialValue:   existing.CredentialValue,
			AlreadyRegistered: true,
			Message:           "member already registered",
		}, nil
	}

	switch credType {
	case types.CredentialTypeHikvision:
		return s.registerCloud(ctx, member, branchID)
	case types.CredentialTypeESSL:
		return s.registerESSL(ctx, member)
	default:
		return RegistrationResult{}, fmt.Errorf("%w: %s", ErrUnknownDeviceType, credType)
	}
}

// registerCloud pushes the member to the vendor cloud as a person and
// assigns the default door privilege. A privilege-assignment failure is
// logged as a warning; the person record itself exists, so the overall
// registration still succeeds.
func (s *RegistrationService) registerCloud(ctx context.Context, member *store.MemberRecord, branchID string) (RegistrationResult, error) {
	settings, err := s.settings.Get(ctx, branchID)
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("load settings: %w", err)
	}
	if settings == nil || !settings.IsActive {
		return RegistrationResult{}, fmt.Errorf("%w: %s", ErrNotConfigured, branchID)
	}

	device := settings.ActiveDevice()
	if device == nil {
		return RegistrationResult{}, fmt.Errorf("%w: %s", ErrNoDeviceConfigured, branchID)
	}

	tok, err := s.tokens.GetToken(ctx, branchID)
	if err != nil {
		return RegistrationResult{}, err
	}

	creds := vendorapi.Credentials{
		APIURL:    settings.APIURL,
		AppKey:    settings.AppKey,
		AppSecret: settings.AppSecret,
	}

	person := vendorapi.Person{
		Name:     member.FullName,
		Gender:   member.Gender,
		CardNo:   cardNumberFor(member.MemberID),
		Phone:    member.Phone,
		Email:    member.Email,
		PhotoURL: member.PhotoURL,
	}

	personID, err := s.vendor.RegisterPerson(ctx, creds, tok.AccessToken, person)
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("register person: %w", err)
	}

	if err := s.credentials.Insert(ctx, store.CredentialRecord{
		MemberID:        member.MemberID,
		CredentialType:  types.CredentialTypeHikvision,
		CredentialValue: personID,
		IsActive:        true,
		IssuedAt:        s.now(),
	}); err != nil {
		return RegistrationResult{}, fmt.Errorf("persist credential mapping: %w", err)
	}

	result := RegistrationResult{
		Status:          types.RegistrationSuccess,
		CredentialType:  types.CredentialTypeHikvision,
		CredentialValue: personID,
		Message:         fmt.Sprintf("registered on device %s", device.Name),
	}

	if err := s.vendor.AssignPrivileges(ctx, creds, tok.AccessToken, personID, defaultDoorID); err != nil {
		s.logger.Warn("door privilege assignment failed",
			zap.String("member_id", member.MemberID),
			zap.String("person_id", personID),
			zap.Error(err),
		)
		result.Message = fmt.Sprintf("registered on device %s; door privilege assignment pending", device.Name)
	}

	return result, nil
}

// registerESSL issues a deterministic local credential without a live
// device call. Stub until the eSSL push SDK integration lands; it writes
// the same mapping rows as the live path so only the vendor call changes.
func (s *RegistrationService) registerESSL(ctx context.Context, member *store.MemberRecord) (RegistrationResult, error) {
	value := "ESSL-" + cardNumberFor(member.MemberID)

	if err := s.credentials.Insert(ctx, store.CredentialRecord{
		MemberID:        member.MemberID,
		CredentialType:  types.CredentialTypeESSL,
		CredentialValue: value,
		IsActive:        true,
		IssuedAt:        s.now(),
	}); err != nil {
		return RegistrationResult{}, fmt.Errorf("persist credential mapping: %w", err)
	}

	return RegistrationResult{
		Status:          types.RegistrationSuccess,
		CredentialType:  types.CredentialTypeESSL,
		CredentialValue: value,
		Message:         "local credential issued",
	}, nil
}

func (s *RegistrationService) complete(ctx context.Context, logID string, status types.RegistrationStatus, details, errMsg string) {
	if err := s.registrations.Complete(ctx, logID, status, details, errMsg, s.now()); err != nil {
		s.logger.Error("close registration log",
			zap.String("registration_id", logID),
			zap.Error(err),
		)
	}
}

// cardNumberFor derives a stable ten-digit card number from a member id,
// so re-registration always produces the same card.
func cardNumberFor(memberID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(memberID))
	return fmt.Sprintf("%010d", h.Sum32())
}
