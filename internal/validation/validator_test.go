// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return one shared instance")
	}
}

type windowRequest struct {
	StartHour int    `json:"start_hour" validate:"gte=0,lte=24"`
	EndHour   int    `json:"end_hour" validate:"gte=0,lte=24,gtefield=StartHour"`
	Date      string `json:"date" validate:"omitempty,calendardate"`
	Channel   string `json:"channel" validate:"omitempty,channelkey"`
	Color     string `json:"color" validate:"omitempty,hexcolor6"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     windowRequest
		wantField string
		wantTag   string
	}{
		{name: "valid", input: windowRequest{StartHour: 6, EndHour: 18, Date: "2016-03-01", Channel: "10.1", Color: "#FFE900"}},
		{name: "zero value", input: windowRequest{}},
		{name: "hour too large", input: windowRequest{EndHour: 25}, wantField: "end_hour", wantTag: "lte"},
		{name: "reversed window", input: windowRequest{StartHour: 10, EndHour: 5}, wantField: "end_hour", wantTag: "gtefield"},
		{name: "bad date", input: windowRequest{Date: "01/03/2016"}, wantField: "date", wantTag: "calendardate"},
		{name: "bad channel", input: windowRequest{Channel: "ballroom"}, wantField: "channel", wantTag: "channelkey"},
		{name: "bad color", input: windowRequest{Color: "yellow"}, wantField: "color", wantTag: "hexcolor6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if tt.wantTag == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() error = %v", err)
				}
				return
			}

			var ve *RequestValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("ValidateStruct() error = %v, want *RequestValidationError", err)
			}
			if len(ve.Fields) != 1 {
				t.Fatalf("fields = %+v, want one", ve.Fields)
			}
			if ve.Fields[0].Field != tt.wantField || ve.Fields[0].Tag != tt.wantTag {
				t.Errorf("field error = %s/%s, want %s/%s", ve.Fields[0].Field, ve.Fields[0].Tag, tt.wantField, tt.wantTag)
			}
			if !strings.Contains(ve.Error(), tt.wantField) {
				t.Errorf("message %q should name the field", ve.Error())
			}
		})
	}
}

func TestRequestValidationError_Details(t *testing.T) {
	err := ValidateStruct(&windowRequest{StartHour: -1, EndHour: 30})
	var ve *RequestValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("ValidateStruct() error = %v", err)
	}
	if len(ve.Fields) < 2 {
		t.Fatalf("fields = %d, want at least 2", len(ve.Fields))
	}
	if _, ok := ve.Details()["fields"]; !ok {
		t.Errorf("Details() = %v, want fields list", ve.Details())
	}

	single := &RequestValidationError{Fields: []FieldError{{Field: "date", Tag: "required", Message: "date is required"}}}
	if single.Details()["field"] != "date" {
		t.Errorf("single Details() = %v", single.Details())
	}
	if (&RequestValidationError{}).Error() != "validation failed" {
		t.Error("empty error message")
	}
}
