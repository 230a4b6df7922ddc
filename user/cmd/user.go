package cmd

import (
	"github.com/gorilla/mux"

	"github.com/Alturino/focushoney/user/internal/controller"
	"github.com/Alturino/focushoney/user/internal/service"
	"github.com/Alturino/focushoney/user/pkg/auth"
)

func AttachUser(router *mux.Router, store service.UserStore, notifier *auth.Notifier, secretKey string) {
	controller.AttachUserController(router, service.NewUserService(store, notifier, secretKey))
}
