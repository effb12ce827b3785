// internal/delivery/discord/app/bot/handlers/components/hello_button/handler_test.go
package hello_button

import (
	"context"
	"errors"
	"testing"

	"github.com/TAG-Epic/shitpost/internal/delivery/discord"
	"github.com/TAG-Epic/shitpost/internal/delivery/discord/app/bot/handlers"
	"github.com/TAG-Epic/shitpost/pkg/format"
)

func TestExecute(t *testing.T) {
	tests := []struct {
		name    string
		args    format.Params
		want    string
		wantErr bool
	}{
		{name: "zero", args: format.Params{"random_number": "0"}, want: "Hello! Your random number was 0"},
		{name: "ten", args: format.Params{"random_number": "10"}, want: "Hello! Your random number was 10"},
		{name: "not a number", args: format.Params{"random_number": "abc"}, wantErr: true},
		{name: "missing", args: format.Params{}, wantErr: true},
	}

	h := NewHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.Execute(context.Background(), handlers.HandlerParams{
				Interaction: &discord.Interaction{Type: discord.InteractionMessageComponent},
				Args:        tt.args,
			})
			if tt.wantErr {
				var pte *format.ParameterTypeError
				if !errors.As(err, &pte) {
					t.Fatalf("expected ParameterTypeError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if res.Response == nil || res.Response.Data.Content != tt.want {
				t.Fatalf("response = %+v", res.Response)
			}
		})
	}
}
