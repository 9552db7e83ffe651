package contact

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, contactService ContactServiceAPI) {
	contactController := &ContactController{Service: contactService}

	contactGroup := r.Group("/api/contacts")
	{
		contactGroup.GET("", contactController.ListContacts)
		contactGroup.POST("", contactController.AddContact)
	}
}
