package server

import (
	"errors"
	"net/http"
	"strings"

	bookingdomain "github.com/dealerstack/vaahan/internal/booking/domain"
	commissiondomain "github.com/dealerstack/vaahan/internal/commission/domain"
	disbursementdomain "github.com/dealerstack/vaahan/internal/disbursement/domain"
	ledgerdomain "github.com/dealerstack/vaahan/internal/ledger/domain"
	receiptdomain "github.com/dealerstack/vaahan/internal/receipt/domain"
	refdomain "github.com/dealerstack/vaahan/internal/reference/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isStateError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unprocessable",
			Message: err.Error(),
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case errors.Is(err, bookingdomain.ErrInvalidID),
		errors.Is(err, bookingdomain.ErrInvalidCustomer),
		errors.Is(err, bookingdomain.ErrInvalidModel),
		errors.Is(err, bookingdomain.ErrInvalidComponents),
		errors.Is(err, bookingdomain.ErrDuplicateComponent),
		errors.Is(err, bookingdomain.ErrInvalidActor):
		return true
	case errors.Is(err, ledgerdomain.ErrInvalidBookingID),
		errors.Is(err, ledgerdomain.ErrInvalidEntryID),
		errors.Is(err, ledgerdomain.ErrInvalidAmount),
		errors.Is(err, ledgerdomain.ErrInvalidPaymentMode),
		errors.Is(err, ledgerdomain.ErrInvalidReason),
		errors.Is(err, ledgerdomain.ErrInvalidActor),
		errors.Is(err, ledgerdomain.ErrCashLocationRequired),
		errors.Is(err, ledgerdomain.ErrBankRequired):
		return true
	case errors.Is(err, receiptdomain.ErrInvalidReceiptID),
		errors.Is(err, disbursementdomain.ErrInvalidDisbursementID),
		errors.Is(err, disbursementdomain.ErrInvalidProviderID),
		errors.Is(err, disbursementdomain.ErrInvalidReference):
		return true
	case errors.Is(err, commissiondomain.ErrInvalidSubdealerID),
		errors.Is(err, commissiondomain.ErrInvalidModelID),
		errors.Is(err, commissiondomain.ErrInvalidHeaderID),
		errors.Is(err, commissiondomain.ErrInvalidRate),
		errors.Is(err, commissiondomain.ErrInvalidDateRange),
		errors.Is(err, commissiondomain.ErrEmptyRates),
		errors.Is(err, commissiondomain.ErrDuplicateHeader),
		errors.Is(err, commissiondomain.ErrInvalidActor):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, bookingdomain.ErrNotFound),
		errors.Is(err, ledgerdomain.ErrEntryNotFound),
		errors.Is(err, receiptdomain.ErrNotFound),
		errors.Is(err, disbursementdomain.ErrNotFound),
		errors.Is(err, refdomain.ErrCashLocationNotFound),
		errors.Is(err, refdomain.ErrBankNotFound),
		errors.Is(err, refdomain.ErrFinanceProviderNotFound),
		errors.Is(err, refdomain.ErrSubdealerNotFound),
		errors.Is(err, refdomain.ErrVehicleModelNotFound),
		errors.Is(err, refdomain.ErrPriceHeaderNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, ledgerdomain.ErrAmountExceedsBalance),
		errors.Is(err, disbursementdomain.ErrDuplicateReference),
		errors.Is(err, bookingdomain.ErrVersionConflict):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	var exceeds *ledgerdomain.AmountExceedsBalanceError
	if errors.As(err, &exceeds) {
		return exceeds.Error()
	}
	if errors.Is(err, disbursementdomain.ErrDuplicateReference) {
		return "duplicate disbursement reference"
	}
	return "conflict"
}

func isStateError(err error) bool {
	switch {
	case errors.Is(err, bookingdomain.ErrComponentOverDiscount),
		errors.Is(err, bookingdomain.ErrDiscountExceedsTotal),
		errors.Is(err, ledgerdomain.ErrEntryReversed),
		errors.Is(err, receiptdomain.ErrAlreadyCancelled),
		errors.Is(err, disbursementdomain.ErrAlreadyCancelled),
		errors.Is(err, disbursementdomain.ErrBookingNotFinanced),
		errors.Is(err, disbursementdomain.ErrProviderMismatch),
		errors.Is(err, commissiondomain.ErrHeaderNotEligible),
		errors.Is(err, commissiondomain.ErrHeaderProductType):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
