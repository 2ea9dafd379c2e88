package audit

import (
	"strconv"

	"recon-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const defaultListLimit = 200

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"created_at"`
	UserName    string             `json:"user_name"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	Detail      string             `json:"detail"`
}

// GET /api/admin/audit-logs?user=alice&action=export&limit=50
// user_name is accepted as an alias of user.
func ListAuditLogsHandler(rec *Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := defaultListLimit
		if s := c.Query("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "limit geçersiz")
			}
			limit = n
		}

		user := c.Query("user")
		if user == "" {
			user = c.Query("user_name")
		}

		logs, err := rec.List(c.UserContext(), ListFilter{
			UserName: user,
			Action:   models.AuditAction(c.Query("action")),
			Limit:    limit,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Loglar listelenemedi")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, log := range logs {
			resp = append(resp, AuditLogResponse{
				ID:          log.ID,
				CreatedAt:   log.CreatedAt.Format("2006-01-02 15:04:05"),
				UserName:    log.UserName,
				Action:      log.Action,
				Description: log.Description,
				Detail:      log.Detail,
			})
		}
		return c.JSON(resp)
	}
}
