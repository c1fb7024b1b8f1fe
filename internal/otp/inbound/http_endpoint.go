package inbound

import (
	"context"
	"errors"
	"strconv"

	"github.com/shandysiswandi/gotp/internal/otp/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/idempotency"
	"github.com/shandysiswandi/gotp/internal/pkg/jwt"
	"github.com/shandysiswandi/gotp/internal/pkg/router"
	"github.com/shandysiswandi/gotp/internal/shared/constant"
)

// HTTPEndpoint exposes HTTP handlers for the one-time code lifecycle.
type HTTPEndpoint struct {
	uc    uc
	idemp idempotency.Idempotency
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Create issues and delivers a new one-time code for the caller.
// @Summary Issue a one-time code
// @Description Generates a code for the given operation, delivers it on the requested channels and returns the expiry.
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body CreateRequest true "Create payload"
// @Success 200 {object} router.successResponse{data=CreateResponse} "Issued code metadata"
// @Failure 409 {object} router.errorResponse "An active code already exists"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/otp [post]
func (h *HTTPEndpoint) Create(r *router.Request) (any, error) {
	clm := jwt.GetAuth(r.Context())
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	var req CreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	in := usecase.CreateInput{
		UserID:      clm.UserID,
		OperationID: req.OperationID,
		Channels:    req.Channels,
	}

	// An Idempotency-Key header lets clients retry the request without
	// risking a second code.
	var resp *usecase.CreateOutput
	call := func() error {
		out, err := h.uc.Create(r.Context(), in)
		if err != nil {
			return err
		}
		resp = out
		return nil
	}

	if key := r.Header.Get("Idempotency-Key"); key != "" {
		err := h.idemp.Exec(r.Context(), "otp:create:"+key, func(ctx context.Context) error {
			return call()
		})
		if err != nil {
			return nil, mapIdempotencyError(err)
		}
	} else if err := call(); err != nil {
		return nil, err
	}

	delivered := make([]string, 0, len(resp.Delivered))
	for _, ch := range resp.Delivered {
		delivered = append(delivered, string(ch))
	}

	return CreateResponse{
		CodeID:    formatID(resp.CodeID),
		ExpiresAt: resp.ExpiresAt,
		Delivered: delivered,
	}, nil
}

// Activate consumes the caller's active code for an operation.
func (h *HTTPEndpoint) Activate(r *router.Request) (any, error) {
	clm := jwt.GetAuth(r.Context())
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	var req ActivateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Activate(r.Context(), usecase.ActivateInput{
		UserID:      clm.UserID,
		OperationID: req.OperationID,
		Code:        req.Code,
	})
	if err != nil {
		return nil, err
	}

	return ActivateResponse{
		CodeID: formatID(resp.CodeID),
		UsedAt: resp.UsedAt,
	}, nil
}

// Status reports the state of the caller's most recent code for an operation.
// Admins may pass a user_id query to inspect another user's code, or omit it
// to resolve the operation across users.
func (h *HTTPEndpoint) Status(r *router.Request) (any, error) {
	clm := jwt.GetAuth(r.Context())
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	userID, err := h.resolveUserID(r, clm)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Status(r.Context(), usecase.StatusInput{
		UserID:      userID,
		IsAdmin:     clm.UserRole == constant.RoleAdmin,
		OperationID: r.GetQuery("operation_id"),
	})
	if err != nil {
		return nil, err
	}

	return StatusResponse{
		CodeID:    formatID(resp.CodeID),
		Status:    resp.Status.String(),
		ExpiresAt: resp.ExpiresAt,
		UsedAt:    resp.UsedAt,
	}, nil
}

// List returns the caller's code history.
func (h *HTTPEndpoint) List(r *router.Request) (any, error) {
	clm := jwt.GetAuth(r.Context())
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	page, err := r.GetQueryInt64("page")
	if err != nil {
		return nil, err
	}

	limit, err := r.GetQueryInt64("limit")
	if err != nil {
		return nil, err
	}

	userID, err := h.resolveUserID(r, clm)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.List(r.Context(), usecase.ListInput{
		UserID:      userID,
		IsAdmin:     clm.UserRole == constant.RoleAdmin,
		OperationID: r.GetQuery("operation_id"),
		Statuses:    r.GetQueries("status"),
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(resp.Codes))
	for _, c := range resp.Codes {
		items = append(items, newListItem(c))
	}

	return ListResponse{
		Items: items,
		meta: map[string]any{
			"page":  resp.Page,
			"limit": resp.Limit,
			"total": resp.Total,
		},
	}, nil
}

// Delete removes a stored code.
func (h *HTTPEndpoint) Delete(r *router.Request) (any, error) {
	clm := jwt.GetAuth(r.Context())
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.Delete(r.Context(), usecase.DeleteInput{
		CodeID:  id,
		ActorID: clm.UserID,
		IsAdmin: clm.UserRole == constant.RoleAdmin,
	}); err != nil {
		return nil, err
	}

	return DeleteResponse{}, nil
}

// Sweep triggers an expiry sweep immediately.
func (h *HTTPEndpoint) Sweep(r *router.Request) (any, error) {
	resp, err := h.uc.Sweep(r.Context())
	if err != nil {
		return nil, err
	}

	return SweepResponse{Expired: resp.Expired}, nil
}

// PolicyGet returns the current code-generation policy.
func (h *HTTPEndpoint) PolicyGet(r *router.Request) (any, error) {
	resp, err := h.uc.PolicyGet(r.Context())
	if err != nil {
		return nil, err
	}

	return newPolicyResponse(resp), nil
}

// PolicySet replaces the code-generation policy.
func (h *HTTPEndpoint) PolicySet(r *router.Request) (any, error) {
	var req PolicyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.PolicySet(r.Context(), usecase.PolicySetInput{
		TTLMillis:  req.TTLMillis,
		CodeLength: req.CodeLength,
	})
	if err != nil {
		return nil, err
	}

	return newPolicyResponse(resp), nil
}

func newPolicyResponse(out *usecase.PolicyOutput) PolicyResponse {
	return PolicyResponse{
		TTLMillis:  out.TTL.Milliseconds(),
		CodeLength: out.CodeLength,
		UpdatedAt:  out.UpdatedAt,
	}
}

// resolveUserID picks the subject of a read. Regular users are pinned to
// their own codes. Admins may name another user via the user_id query, or
// omit it to read across every user (a zero result).
func (h *HTTPEndpoint) resolveUserID(r *router.Request, clm *jwt.Claims) (int64, error) {
	target, err := r.GetQueryInt64("user_id")
	if err != nil {
		return 0, err
	}
	if clm.UserRole == constant.RoleAdmin {
		return target, nil
	}
	if target != 0 && target != clm.UserID {
		return 0, goerror.NewBusiness("You are not allowed to view other users' codes", goerror.CodeForbidden)
	}
	return clm.UserID, nil
}

func mapIdempotencyError(err error) error {
	switch {
	case errors.Is(err, idempotency.ErrAlreadyInProgress):
		return goerror.NewBusiness("The same request is already being processed", goerror.CodeConflict)
	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		return goerror.NewBusiness("This request was already processed", goerror.CodeConflict)
	case errors.Is(err, idempotency.ErrAlreadyFailed):
		return goerror.NewBusiness("This request already failed, use a new idempotency key", goerror.CodeConflict)
	default:
		return err
	}
}
