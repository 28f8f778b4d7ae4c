package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/registro/core/notification"
)

type (
	UnreadCountResponse struct {
		Count int `json:"count"`
	}
)

type notificationApi struct {
	svc *notification.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service) {
	api := notificationApi{svc: svc}

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.query)
	ng.GET("/unread-count", api.unreadCount)
	ng.POST("/:id/read", api.markAsRead)
	ng.POST("/read-all", api.markAllAsRead)
	ng.DELETE("", api.clear)
}

func (api *notificationApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.All())
}

func (api *notificationApi) unreadCount(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, UnreadCountResponse{Count: api.svc.UnreadCount()})
}

func (api *notificationApi) markAsRead(ctx echo.Context) error {
	api.svc.MarkAsRead(ctx.Param("id"))
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "notification read"})
}

func (api *notificationApi) markAllAsRead(ctx echo.Context) error {
	api.svc.MarkAllAsRead()
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "all notifications read"})
}

func (api *notificationApi) clear(ctx echo.Context) error {
	api.svc.Clear()
	return ctx.NoContent(http.StatusNoContent)
}
