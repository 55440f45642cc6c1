package controllers

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/studycrew/web/internal/app/models/dto"
	"github.com/studycrew/web/internal/app/nav"
	"github.com/studycrew/web/internal/middleware"
	"github.com/studycrew/web/internal/pkg/email"
	"github.com/studycrew/web/internal/pkg/markdown"
)

// ContentSource returns the Markdown source of a named page
type ContentSource func(name string) ([]byte, error)

// PageController serves the public pages and the contact form
type PageController struct {
	content   map[string]template.HTML
	sender    email.Sender
	contactTo []string
	logger    zerolog.Logger
}

// NewPageController renders the content pages up front
func NewPageController(source ContentSource, renderer *markdown.Renderer, sender email.Sender, contactTo []string, logger zerolog.Logger) (*PageController, error) {
	content := make(map[string]template.HTML)
	for _, name := range []string{"home", "about", "contact"} {
		src, err := source(name)
		if err != nil {
			return nil, fmt.Errorf("load %s page: %w", name, err)
		}
		html, err := renderer.Render(src)
		if err != nil {
			return nil, fmt.Errorf("render %s page: %w", name, err)
		}
		content[name] = html
	}

	return &PageController{
		content:   content,
		sender:    sender,
		contactTo: contactTo,
		logger:    logger,
	}, nil
}

func (pc *PageController) show(c *gin.Context, name, title string) {
	page := newPage(c, title)
	page.Content = pc.content[name]
	c.HTML(http.StatusOK, name+".html", page)
}

// Home renders the landing page
func (pc *PageController) Home(c *gin.Context) {
	pc.show(c, "home", "Home")
}

// About renders the about page
func (pc *PageController) About(c *gin.Context) {
	pc.show(c, "about", "About Us")
}

// Contact renders the contact page and its form
func (pc *PageController) Contact(c *gin.Context) {
	pc.show(c, "contact", "Contact Us")
}

// SubmitContact emails a contact-form message to the team
func (pc *PageController) SubmitContact(c *gin.Context) {
	var form dto.ContactForm
	fields, err := middleware.BindForm(c, &form)
	if err != nil {
		middleware.HandleWebError(c, err)
		return
	}
	if fields != nil {
		middleware.SetFlash(c, middleware.Flash{
			Kind:   middleware.FlashError,
			Fields: fields,
			Form:   map[string]string{"name": form.Name, "email": form.Email, "message": form.Message},
		})
		redirect(c, nav.PathContact)
		return
	}

	msg, err := email.ContactMessage(pc.contactTo, form.Name, form.Email, form.Message)
	if err == nil {
		_, err = pc.sender.Send(c.Request.Context(), msg)
	}
	if err != nil {
		pc.logger.Error().Err(err).Str("from", form.Email).Msg("Failed to send contact message")
		middleware.SetFlash(c, middleware.Flash{
			Kind:    middleware.FlashError,
			Message: "We could not send your message. Please try again later.",
			Form:    map[string]string{"name": form.Name, "email": form.Email, "message": form.Message},
		})
		redirect(c, nav.PathContact)
		return
	}

	pc.logger.Info().Str("from", form.Email).Msg("Contact message sent")
	middleware.SetFlash(c, middleware.Flash{
		Kind:    middleware.FlashSuccess,
		Message: "Thanks for reaching out! We will get back to you soon.",
	})
	redirect(c, nav.PathContact)
}
