// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"code.matchbook.io/matchbook/core/matching"
	"code.matchbook.io/matchbook/logging"
	"code.matchbook.io/matchbook/metrics"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

var ErrInvalidRequest = newError("invalid request")

// Server is the REST binding over the execution engine. It owns all wire
// serialization: the engine speaks integer ticks, the wire speaks decimal
// price strings.
type Server struct {
	*httprouter.Router

	log      *logging.Logger
	cfgMu    sync.Mutex
	cfg      Config
	engine   Engine
	decimals uint32
	srv      *http.Server
}

// Engine is the subset of the execution engine the API consumes.
type Engine interface {
	SubmitOrder(side matching.Side, price, quantity uint64) (*matching.OrderConfirmation, error)
	CancelOrder(id uint64) (*matching.Order, error)
	GetOrder(id uint64) (*matching.Order, error)
	BestBidPrice() (uint64, error)
	BestAskPrice() (uint64, error)
}

type SubmitOrderRequest struct {
	Side     string `json:"side"`
	Price    string `json:"price"`
	Quantity uint64 `json:"quantity"`
}

type OrderResponse struct {
	ID        uint64 `json:"id"`
	Side      string `json:"side"`
	Price     string `json:"price"`
	Quantity  uint64 `json:"quantity"`
	Remaining uint64 `json:"remaining"`
	Status    string `json:"status"`
}

type TradeResponse struct {
	Price       string `json:"price"`
	Size        uint64 `json:"size"`
	BuyOrderID  uint64 `json:"buyOrderId"`
	SellOrderID uint64 `json:"sellOrderId"`
	Aggressor   string `json:"aggressor"`
}

type SubmitOrderResponse struct {
	Order  OrderResponse   `json:"order"`
	Trades []TradeResponse `json:"trades"`
}

// BestPricesResponse carries null for a side with no resting orders.
type BestPricesResponse struct {
	Bid *string `json:"bid"`
	Ask *string `json:"ask"`
}

// NewServer wires the REST routes over the given engine. PriceDecimals is
// the number of decimal places in one price tick on the wire.
func NewServer(log *logging.Logger, cfg Config, engine Engine, priceDecimals uint32) *Server {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	s := &Server{
		Router:   httprouter.New(),
		log:      log,
		cfg:      cfg,
		engine:   engine,
		decimals: priceDecimals,
	}

	s.POST("/api/v1/orders", s.SubmitOrder)
	s.GET("/api/v1/orders/:id", s.GetOrder)
	s.DELETE("/api/v1/orders/:id", s.CancelOrder)
	s.GET("/api/v1/market/prices", s.BestPrices)
	return s
}

// ReloadConf updates the server's configuration.
func (s *Server) ReloadConf(cfg Config) {
	s.log.Info("reloading configuration")
	if s.log.GetLevel() != cfg.Level.Get() {
		s.log.Info("updating log level",
			logging.String("old", s.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()))
		s.log.SetLevel(cfg.Level.Get())
	}
	// IP and Port changes are picked up on the next Start only
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()
}

// Start serves the API until Stop is called.
func (s *Server) Start() error {
	s.cfgMu.Lock()
	addr := fmt.Sprintf("%s:%v", s.cfg.IP, s.cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: cors.AllowAll().Handler(s), // middleware with cors
	}
	s.srv = srv
	s.cfgMu.Unlock()

	s.log.Info("starting api server", logging.String("address", addr))
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop() error {
	s.cfgMu.Lock()
	srv := s.srv
	timeout := s.cfg.ShutdownTimeout.Get()
	s.cfgMu.Unlock()
	if srv == nil {
		return nil
	}

	s.log.Info("stopping api server",
		logging.Duration("shutdown-timeout", timeout))
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (s *Server) SubmitOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	defer metrics.APIRequestAndTimeREST("SubmitOrder")()

	req := SubmitOrderRequest{}
	if err := unmarshalBody(r, &req); err != nil {
		writeError(w, newError(err.Error()), http.StatusBadRequest)
		return
	}

	side, ok := parseSide(req.Side)
	if !ok {
		writeError(w, newError("side must be BUY or SELL"), http.StatusBadRequest)
		return
	}
	price, err := parsePrice(req.Price, s.decimals)
	if err != nil {
		writeError(w, newError(err.Error()), http.StatusBadRequest)
		return
	}
	if req.Quantity == 0 {
		writeError(w, newError("quantity must be a positive integer"), http.StatusBadRequest)
		return
	}

	conf, err := s.engine.SubmitOrder(side, price, req.Quantity)
	if err != nil {
		writeError(w, newError(err.Error()), http.StatusBadRequest)
		return
	}

	resp := SubmitOrderResponse{
		Order:  s.orderResponse(conf.Order),
		Trades: make([]TradeResponse, 0, len(conf.Trades)),
	}
	for _, t := range conf.Trades {
		resp.Trades = append(resp.Trades, TradeResponse{
			Price:       formatPrice(t.Price, s.decimals),
			Size:        t.Size,
			BuyOrderID:  t.BuyOrderID,
			SellOrderID: t.SellOrderID,
			Aggressor:   t.Aggressor.String(),
		})
	}
	writeSuccess(w, resp, http.StatusOK)
}

func (s *Server) GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	defer metrics.APIRequestAndTimeREST("GetOrder")()

	id, err := strconv.ParseUint(ps.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, newError("order id must be an unsigned integer"), http.StatusBadRequest)
		return
	}

	order, err := s.engine.GetOrder(id)
	if err != nil {
		writeError(w, newError(err.Error()), http.StatusNotFound)
		return
	}
	writeSuccess(w, s.orderResponse(order), http.StatusOK)
}

func (s *Server) CancelOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	defer metrics.APIRequestAndTimeREST("CancelOrder")()

	id, err := strconv.ParseUint(ps.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, newError("order id must be an unsigned integer"), http.StatusBadRequest)
		return
	}

	order, err := s.engine.CancelOrder(id)
	if err != nil {
		writeError(w, newError(err.Error()), http.StatusNotFound)
		return
	}
	writeSuccess(w, s.orderResponse(order), http.StatusOK)
}

func (s *Server) BestPrices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	defer metrics.APIRequestAndTimeREST("BestPrices")()

	resp := BestPricesResponse{}
	if bid, err := s.engine.BestBidPrice(); err == nil {
		p := formatPrice(bid, s.decimals)
		resp.Bid = &p
	}
	if ask, err := s.engine.BestAskPrice(); err == nil {
		p := formatPrice(ask, s.decimals)
		resp.Ask = &p
	}
	writeSuccess(w, resp, http.StatusOK)
}

func (s *Server) orderResponse(o *matching.Order) OrderResponse {
	return OrderResponse{
		ID:        o.ID,
		Side:      o.Side.String(),
		Price:     formatPrice(o.Price, s.decimals),
		Quantity:  o.Quantity,
		Remaining: o.Remaining,
		Status:    o.Status.String(),
	}
}

func parseSide(s string) (matching.Side, bool) {
	switch s {
	case "BUY":
		return matching.SideBuy, true
	case "SELL":
		return matching.SideSell, true
	}
	return matching.SideUnspecified, false
}

func unmarshalBody(r *http.Request, into interface{}) error {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return ErrInvalidRequest
	}
	return json.Unmarshal(body, into)
}

func writeError(w http.ResponseWriter, e error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	buf, _ := json.Marshal(e)
	w.Write(buf)
}

func writeSuccess(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	buf, _ := json.Marshal(data)
	w.Write(buf)
}

type HTTPError struct {
	ErrorStr string `json:"error"`
}

func (e HTTPError) Error() string {
	return e.ErrorStr
}

func newError(e string) HTTPError {
	return HTTPError{
		ErrorStr: e,
	}
}
