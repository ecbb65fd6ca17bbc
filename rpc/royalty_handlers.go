package rpc

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"royaltychain/crypto"
	"royaltychain/native/royalty"
)

type royaltyRegisterTermParams struct {
	Caller   string `json:"caller"`
	DesignID uint64 `json:"designId"`
	Rate     uint64 `json:"rate"`
	Base     uint64 `json:"base"`
	Formula  string `json:"formula"`
	Currency string `json:"currency"`
}

type royaltySubmitUsageParams struct {
	Caller    string `json:"caller"`
	DesignID  uint64 `json:"designId"`
	Period    int64  `json:"period"`
	Occupants int64  `json:"occupants"`
	Energy    int64  `json:"energy"`
}

type royaltyCalculateParams struct {
	DesignID uint64 `json:"designId"`
	Period   int64  `json:"period"`
	Revenue  string `json:"revenue"`
}

type royaltyUpdateAdminParams struct {
	Caller   string `json:"caller"`
	NewAdmin string `json:"newAdmin"`
}

type royaltyQueryParams struct {
	DesignID uint64 `json:"designId"`
	Period   int64  `json:"period,omitempty"`
}

type royaltyTermResult struct {
	DesignID uint64 `json:"designId"`
	Rate     uint32 `json:"rate"`
	Base     uint64 `json:"base"`
	Formula  string `json:"formula"`
	Currency string `json:"currency"`
	Creator  string `json:"creator"`
}

type royaltyUsageResult struct {
	DesignID  uint64 `json:"designId"`
	Period    uint64 `json:"period"`
	Occupants uint64 `json:"occupants"`
	Energy    uint64 `json:"energy"`
	Timestamp uint64 `json:"timestamp"`
	Submitter string `json:"submitter"`
}

type royaltyCalculateResult struct {
	DesignID uint64 `json:"designId"`
	Period   uint64 `json:"period"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type royaltyAdminResult struct {
	Admin string `json:"admin"`
}

func formatAddress(addr [20]byte) string {
	return crypto.MustNewAddress(crypto.RoyaltyPrefix, addr[:]).String()
}

func formatTerm(designID uint64, term *royalty.Term) royaltyTermResult {
	return royaltyTermResult{
		DesignID: designID,
		Rate:     term.Rate,
		Base:     term.Base,
		Formula:  term.Formula.String(),
		Currency: term.Currency,
		Creator:  formatAddress(term.Creator),
	}
}

func formatUsage(designID, period uint64, usage *royalty.Usage) royaltyUsageResult {
	return royaltyUsageResult{
		DesignID:  designID,
		Period:    period,
		Occupants: usage.Occupants,
		Energy:    usage.Energy,
		Timestamp: usage.Timestamp,
		Submitter: formatAddress(usage.Submitter),
	}
}

func decodeBech32(addr string) ([20]byte, error) {
	var zero [20]byte
	decoded, err := crypto.DecodeAddress(strings.TrimSpace(addr))
	if err != nil {
		return zero, err
	}
	copy(zero[:], decoded.Bytes())
	return zero, nil
}

// parseRevenue only requires a well-formed base-10 integer. Sign and magnitude
// checks stay in the engine so its error codes surface on the wire.
func parseRevenue(revenue string) (*big.Int, error) {
	trimmed := strings.TrimSpace(revenue)
	if trimmed == "" {
		return nil, fmt.Errorf("revenue is required")
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid revenue")
	}
	return value, nil
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

// writeEngineError surfaces royalty engine failures with their numeric domain
// codes; anything else is reported as a generic server error.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	if code, ok := royalty.ErrorCode(err); ok {
		writeError(w, http.StatusBadRequest, id, int(code), err.Error(), nil)
		return
	}
	writeError(w, http.StatusInternalServerError, id, codeServerError, "internal error", err.Error())
}

func (s *Server) handleRoyaltyRegisterTerm(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params royaltyRegisterTermParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	callerAddr, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	term, err := s.node.RegisterTerm(callerAddr, params.DesignID, params.Rate, params.Base, royalty.ParseFormula(params.Formula), params.Currency)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatTerm(params.DesignID, term))
}

func (s *Server) handleRoyaltySubmitUsage(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params royaltySubmitUsageParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	callerAddr, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	usage, err := s.node.SubmitUsage(callerAddr, params.DesignID, params.Period, params.Occupants, params.Energy)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatUsage(params.DesignID, uint64(params.Period), usage))
}

func (s *Server) handleRoyaltyCalculate(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params royaltyCalculateParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	revenue, err := parseRevenue(params.Revenue)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amount, err := s.node.CalculateRoyalty(params.DesignID, params.Period, revenue)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	currency := ""
	if term, ok, termErr := s.node.RoyaltyTerm(params.DesignID); termErr == nil && ok {
		currency = term.Currency
	}
	writeResult(w, req.ID, royaltyCalculateResult{
		DesignID: params.DesignID,
		Period:   uint64(params.Period),
		Amount:   amount.String(),
		Currency: currency,
	})
}

func (s *Server) handleRoyaltyUpdateAdmin(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params royaltyUpdateAdminParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	callerAddr, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	newAdmin, err := decodeBech32(params.NewAdmin)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid newAdmin address", err.Error())
		return
	}
	if err := s.node.UpdateAdmin(callerAddr, newAdmin); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, royaltyAdminResult{Admin: params.NewAdmin})
}

func (s *Server) handleRoyaltyGetTerm(w http.ResponseWriter, req *RPCRequest) {
	var params royaltyQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	term, ok, err := s.node.RoyaltyTerm(params.DesignID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeEngineError(w, req.ID, royalty.ErrDesignNotFound)
		return
	}
	writeResult(w, req.ID, formatTerm(params.DesignID, term))
}

func (s *Server) handleRoyaltyGetUsage(w http.ResponseWriter, req *RPCRequest) {
	var params royaltyQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	if params.Period <= 0 {
		writeEngineError(w, req.ID, royalty.ErrInvalidPeriod)
		return
	}
	usage, ok, err := s.node.RoyaltyUsage(params.DesignID, uint64(params.Period))
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeServerError, "no usage recorded for design and period", nil)
		return
	}
	writeResult(w, req.ID, formatUsage(params.DesignID, uint64(params.Period), usage))
}

func (s *Server) handleRoyaltyGetHistory(w http.ResponseWriter, req *RPCRequest) {
	var params royaltyQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	if params.Period <= 0 {
		writeEngineError(w, req.ID, royalty.ErrInvalidPeriod)
		return
	}
	amount, ok, err := s.node.RoyaltyHistory(params.DesignID, uint64(params.Period))
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeServerError, "no royalty calculated for design and period", nil)
		return
	}
	currency := ""
	if term, termOK, termErr := s.node.RoyaltyTerm(params.DesignID); termErr == nil && termOK {
		currency = term.Currency
	}
	writeResult(w, req.ID, royaltyCalculateResult{
		DesignID: params.DesignID,
		Period:   uint64(params.Period),
		Amount:   amount.String(),
		Currency: currency,
	})
}

func (s *Server) handleRoyaltyGetAdmin(w http.ResponseWriter, req *RPCRequest) {
	admin, ok, err := s.node.Admin()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeServerError, "administrator not configured", nil)
		return
	}
	writeResult(w, req.ID, royaltyAdminResult{Admin: formatAddress(admin)})
}
