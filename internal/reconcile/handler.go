package reconcile

import (
	"bytes"
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"recon-backend/internal/audit"
	"recon-backend/internal/auth"
	"recon-backend/internal/ledger"
	"recon-backend/internal/logger"
	"recon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// -------------------------
// Request/Response Types
// -------------------------

type ExportRequest struct {
	OutboundFrom string `json:"outboundFrom"` // "2024-01-01"
	OutboundTo   string `json:"outboundTo"`
	PaymentFrom  string `json:"paymentFrom"`
	PaymentTo    string `json:"paymentTo"`
	ProductCode  string `json:"productCode"`
	Disambiguate bool   `json:"disambiguate"`
}

type PartnerResponse struct {
	Code          string `json:"code"`
	Role          string `json:"role"`
	ShortName     string `json:"short_name"`
	FullName      string `json:"full_name"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person"`
	ContactPhone  string `json:"contact_phone"`
}

type SummaryResponse struct {
	PartnerCode string          `json:"partner_code"`
	Role        string          `json:"role"`
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	Balance     decimal.Decimal `json:"balance"`
}

type AvailableExport struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Endpoint     string `json:"endpoint"`
	Method       string `json:"method"`
	ResponseType string `json:"response_type"`
}

// PartnerReader is what the partner endpoints read through.
type PartnerReader interface {
	ListPartners(ctx context.Context, role models.PartnerRole) ([]models.Partner, error)
	FindPartner(ctx context.Context, code string) (*models.Partner, error)
	Summarize(ctx context.Context, partnerCode string, role models.PartnerRole) (ledger.Summary, error)
}

// POST /api/export/receivable-payable
func ExportReceivablePayableHandler(run *Run, rec *audit.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ExportRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
			}
		}

		var buf bytes.Buffer
		res := run.ExecuteTo(c.UserContext(), Filters{
			OutboundFrom: body.OutboundFrom,
			OutboundTo:   body.OutboundTo,
			PaymentFrom:  body.PaymentFrom,
			PaymentTo:    body.PaymentTo,
			ProductCode:  strings.TrimSpace(body.ProductCode),
			Disambiguate: body.Disambiguate,
		}, &buf)

		username, _ := c.Locals(auth.CtxUsernameKey).(string)
		action := models.AuditActionExport
		if !res.Success {
			action = models.AuditActionExportFailed
		}
		if err := rec.WriteLog(c.UserContext(), audit.LogOptions{
			UserName:    username,
			Action:      action,
			Description: res.Message,
			Detail:      res,
		}); err != nil {
			log := logger.WithComponent("reconcile")
			log.Warn().Err(err).Str("run_id", res.RunID).Msg("audit log not written")
		}

		if !res.Success {
			return c.Status(fiber.StatusInternalServerError).JSON(res)
		}

		filename := DefaultFileName(run.now())
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+url.PathEscape(filename)+`"`)
		c.Set("X-Run-Id", res.RunID)
		c.Set("X-Total-Sheets", strconv.Itoa(res.TotalSheets))
		c.Set("X-Export-Warnings", strconv.Itoa(len(res.Warnings)))
		return c.Send(buf.Bytes())
	}
}

// GET /api/export/status
func ExportStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "export service is running",
			"available_exports": []AvailableExport{
				{
					Name:         "receivable-payable",
					Description:  "receivable and payable detail per partner",
					Endpoint:     "/api/export/receivable-payable",
					Method:       fiber.MethodPost,
					ResponseType: xlsxContentType,
				},
			},
		})
	}
}

// GET /api/partners?role=customer|supplier
func ListPartnersHandler(src PartnerReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles := []models.PartnerRole{models.PartnerCustomer, models.PartnerSupplier}
		if q := c.Query("role"); q != "" {
			role, err := models.ParsePartnerRole(q)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "role geçersiz")
			}
			roles = []models.PartnerRole{role}
		}

		resp := make([]PartnerResponse, 0)
		for _, role := range roles {
			partners, err := src.ListPartners(c.UserContext(), role)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Partner listesi alınamadı")
			}
			for _, p := range partners {
				resp = append(resp, PartnerResponse{
					Code:          p.Code,
					Role:          role.String(),
					ShortName:     p.ShortName,
					FullName:      p.FullName,
					Address:       p.Address,
					ContactPerson: p.ContactPerson,
					ContactPhone:  p.ContactPhone,
				})
			}
		}
		return c.JSON(resp)
	}
}

// GET /api/partners/:code/summary?role=customer|supplier
// Without role the partner's own role is used.
func PartnerSummaryHandler(src PartnerReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code, err := url.PathUnescape(c.Params("code"))
		if err != nil || strings.TrimSpace(code) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Partner kodu geçersiz")
		}

		var role models.PartnerRole
		if q := c.Query("role"); q != "" {
			role, err = models.ParsePartnerRole(q)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "role geçersiz")
			}
		} else {
			p, err := src.FindPartner(c.UserContext(), code)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Partner okunamadı")
			}
			if p == nil {
				return fiber.NewError(fiber.StatusNotFound, "Partner bulunamadı")
			}
			role = p.Role
		}

		s, err := src.Summarize(c.UserContext(), code, role)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bakiye hesaplanamadı")
		}

		return c.JSON(SummaryResponse{
			PartnerCode: code,
			Role:        role.String(),
			Total:       s.Total,
			Paid:        s.Paid,
			Balance:     s.Balance,
		})
	}
}

type BalanceResponse struct {
	Code      string          `json:"code"`
	ShortName string          `json:"short_name"`
	FullName  string          `json:"full_name"`
	Total     decimal.Decimal `json:"total"`
	Paid      decimal.Decimal `json:"paid"`
	Balance   decimal.Decimal `json:"balance"`
}

// GET /api/partners/balances?role=customer&sort=balance&order=desc
// Full-history position of every partner of one role.
func BalancesHandler(src PartnerReader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, err := models.ParsePartnerRole(c.Query("role", "customer"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "role geçersiz")
		}

		sortField := c.Query("sort", "balance")
		desc := !strings.EqualFold(c.Query("order", "desc"), "asc")

		partners, err := src.ListPartners(c.UserContext(), role)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Partner listesi alınamadı")
		}

		resp := make([]BalanceResponse, 0, len(partners))
		for _, p := range partners {
			s, err := src.Summarize(c.UserContext(), p.Code, role)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Bakiye hesaplanamadı")
			}
			resp = append(resp, BalanceResponse{
				Code:      p.Code,
				ShortName: p.ShortName,
				FullName:  p.FullName,
				Total:     s.Total,
				Paid:      s.Paid,
				Balance:   s.Balance,
			})
		}

		var less func(a, b BalanceResponse) bool
		switch sortField {
		case "balance":
			less = func(a, b BalanceResponse) bool { return a.Balance.LessThan(b.Balance) }
		case "total":
			less = func(a, b BalanceResponse) bool { return a.Total.LessThan(b.Total) }
		case "paid":
			less = func(a, b BalanceResponse) bool { return a.Paid.LessThan(b.Paid) }
		case "code":
			less = func(a, b BalanceResponse) bool { return a.Code < b.Code }
		default:
			return fiber.NewError(fiber.StatusBadRequest, "sort geçersiz")
		}
		sort.SliceStable(resp, func(i, j int) bool {
			if desc {
				return less(resp[j], resp[i])
			}
			return less(resp[i], resp[j])
		})

		return c.JSON(resp)
	}
}
