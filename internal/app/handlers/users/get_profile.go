package users

import (
	"context"
	"errors"
	"strings"

	"tradepost/internal/app/dto"
	handlersupport "tradepost/internal/app/handlers/support"
	"tradepost/internal/app/queries"
	"tradepost/internal/app/uow"
	"tradepost/internal/domain/shared/fault"
	domainusers "tradepost/internal/domain/users"
)

const getProfileKey = "users.profile.get"

type GetProfileQuery struct {
	UserID string
}

func (q GetProfileQuery) Key() string { return getProfileKey }

type GetProfileHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetProfileHandler) Handle(ctx context.Context, q GetProfileQuery) (dto.UserProfile, error) {
	id := strings.TrimSpace(q.UserID)
	if id == "" {
		return dto.UserProfile{}, fault.InvalidOperation("users: user id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.UserProfile{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	profile, err := unit.Users().ByID(execCtx, domainusers.UserID(id))
	if err != nil {
		if errors.Is(err, domainusers.ErrNotFound) {
			return dto.UserProfile{}, fault.Wrap(fault.KindNotFound, err)
		}
		return dto.UserProfile{}, err
	}
	return dto.MapUserProfile(profile), nil
}

var _ queries.Handler[GetProfileQuery, dto.UserProfile] = (*GetProfileHandler)(nil)
