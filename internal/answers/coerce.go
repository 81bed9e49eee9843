package answers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harrison/bulkcomplete/internal/models"
)

// DateLayout is the date format accepted in answers files.
const DateLayout = "2006-01-02"

// Coerce converts textual answer values into a value for attr.
// An empty list clears the attribute.
func Coerce(attr *models.Attribute, values []string) (models.Value, error) {
	switch attr.Type {
	case models.TypeInput, models.TypeText:
		s, err := single(values)
		if err != nil {
			return models.Value{}, err
		}
		return models.TextValue(attr.Type, s), nil

	case models.TypeDate:
		s, err := single(values)
		if err != nil {
			return models.Value{}, err
		}
		if s != "" {
			if _, err := time.Parse(DateLayout, s); err != nil {
				return models.Value{}, fmt.Errorf("%w: date %q must look like %s", ErrInvalidValue, s, DateLayout)
			}
		}
		return models.TextValue(models.TypeDate, s), nil

	case models.TypeCheckbox:
		s, err := single(values)
		if err != nil {
			return models.Value{}, err
		}
		checked, err := parseChecked(s)
		if err != nil {
			return models.Value{}, err
		}
		return models.CheckboxValue(checked), nil

	case models.TypeDropdown:
		s, err := single(values)
		if err != nil {
			return models.Value{}, err
		}
		if s == "" {
			return models.TextValue(models.TypeDropdown, ""), nil
		}
		option, err := matchOption(attr, s)
		if err != nil {
			return models.Value{}, err
		}
		return models.TextValue(models.TypeDropdown, option), nil

	case models.TypeMultiselect:
		items := splitList(values)
		selected := make([]string, 0, len(items))
		for _, item := range items {
			option, err := matchOption(attr, item)
			if err != nil {
				return models.Value{}, err
			}
			selected = append(selected, option)
		}
		return models.TextValue(models.TypeMultiselect, strings.Join(selected, ",")), nil

	case models.TypePerson:
		items := splitList(values)
		people := make([]models.PersonRef, 0, len(items))
		for _, item := range items {
			id, err := strconv.ParseInt(item, 10, 64)
			if err != nil || id <= 0 {
				return models.Value{}, fmt.Errorf("%w: person %q must be a numeric id", ErrInvalidValue, item)
			}
			people = append(people, models.PersonRef{ID: id, Type: "Person"})
		}
		return models.PersonValue(people), nil

	default:
		return models.Value{}, fmt.Errorf("%w: %q", models.ErrUnknownAttributeType, attr.Type)
	}
}

func single(values []string) (string, error) {
	switch len(values) {
	case 0:
		return "", nil
	case 1:
		return strings.TrimSpace(values[0]), nil
	default:
		return "", fmt.Errorf("%w: expected one value, got %d", ErrInvalidValue, len(values))
	}
}

// splitList accepts a list of values or one comma separated value.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseChecked(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "x", "checked":
		return true, nil
	case "", "0", "false", "no", "n", "unchecked":
		return false, nil
	default:
		return false, fmt.Errorf("%w: checkbox %q", ErrInvalidValue, s)
	}
}

// matchOption returns the option spelled as configured. Matching ignores case.
func matchOption(attr *models.Attribute, s string) (string, error) {
	if attr.Options != nil {
		for _, option := range attr.Options.Values {
			if strings.EqualFold(option, s) {
				return option, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOption, s)
}
