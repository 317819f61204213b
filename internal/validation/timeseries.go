package validation

import "time"

// ValidateTimeseriesRange validates and parses the start/end query
// parameters of a time-series request. Both are required, must be
// YYYY-MM-DD, and start must not come after end.
func ValidateTimeseriesRange(startStr, endStr string) (start, end time.Time, err error) {
	errors := make(map[string]string)

	start, startErr := ParseDate(startStr)
	if startStr == "" {
		errors["start"] = "start is required"
	} else if startErr != nil {
		errors["start"] = startErr.Error()
	}

	end, endErr := ParseDate(endStr)
	if endStr == "" {
		errors["end"] = "end is required"
	} else if endErr != nil {
		errors["end"] = endErr.Error()
	}

	if len(errors) == 0 && start.After(end) {
		errors["start"] = "start must not come after end"
	}

	if len(errors) > 0 {
		return time.Time{}, time.Time{}, &Error{Fields: errors}
	}

	return start, end, nil
}
