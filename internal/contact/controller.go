package contact

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ContactController struct {
	Service ContactServiceAPI
}

func (cc *ContactController) ListContacts(c *gin.Context) {
	contacts, err := cc.Service.ListContacts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

func (cc *ContactController) AddContact(c *gin.Context) {
	var input AddContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact, err := cc.Service.AddContact(input.Name, input.Phone)
	if err != nil {
		if errors.Is(err, ErrNameAndPhoneRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Contact added successfully",
		"contact": contact,
	})
}
