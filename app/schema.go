package app

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/navbryce/feed-be/model"
)

const tagEmbedShape = "embedshape"

// Validator checks posts and replies against their structural rules. It has no side effects and
// reports only the first failing rule.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	validate.RegisterStructValidation(validateEmbedShape, model.Embed{})
	return &Validator{validate: validate}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return strings.ToLower(fld.Name)
	}
	return name
}

func validateEmbedShape(sl validator.StructLevel) {
	embed := sl.Current().Interface().(model.Embed)
	if embed.Type != model.EmbedTypeImage && embed.Type != model.EmbedTypeLink {
		// already reported by the oneof rule on type
		return
	}
	if !embed.ShapeMatches() {
		sl.ReportError(embed.Type, string(embed.Type), string(embed.Type), tagEmbedShape, string(embed.Type))
	}
}

func (v *Validator) ValidatePost(post *model.Post) error {
	if post == nil {
		return ValidationError("The post is required")
	}
	return v.check(post)
}

func (v *Validator) ValidateReply(reply *model.Reply) error {
	if reply == nil {
		return ValidationError("The reply is required")
	}
	return v.check(reply)
}

func (v *Validator) check(value interface{}) error {
	err := v.validate.Struct(value)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return ValidationError(err.Error())
	}
	return ValidationError(describe(fieldErrs[0]))
}

// describe names the failing field by its JSON path, e.g. "replies[0].author.name".
func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %v is required", field)
	case "oneof":
		return fmt.Sprintf("The %v must be one of: %v", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case tagEmbedShape:
		return fmt.Sprintf("The embed does not match the %v embed shape", fe.Param())
	default:
		return fmt.Sprintf("The %v failed the %v rule", field, fe.Tag())
	}
}
