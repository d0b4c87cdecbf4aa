package handler

import (
	"net/http"

	"typerace/internal/pkg/req"
	"typerace/internal/pkg/resp"
)

type PowVerifyInput struct {
	Nonce   string `json:"nonce"`
	Counter string `json:"counter"`
}

// HandlePowChallenge issues a fresh proof-of-work challenge.
func HandlePowChallenge(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.PoW.NewChallenge())
	}
}

// HandlePowVerify trades a solved challenge for a single-use proof token.
func HandlePowVerify(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input PowVerifyInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token, customErr := deps.PoW.ValidateProof(input.Nonce, input.Counter)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]string{"token": token})
	}
}
