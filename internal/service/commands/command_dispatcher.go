package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/milkcenter/internal/domain/models"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const dateFormat = "2006-01-02"

// HelpText lists the commands understood over chat.
const HelpText = `Milk centre commands:
/collect <farmer> <morning|evening> <liters> [fat] [snf] [rate]
/pay <farmer> <amount> [cash|bank|upi|cheque] [reference]
/summary [YYYY-MM-DD]
/balance <farmer>
/top [n]
<farmer> is the farmer code or id.`

// Ledger is the part of the procurement ledger driven by chat commands.
type Ledger interface {
	Today() string
	FindFarmer(ref string) (models.Farmer, bool)
	AddCollection(ctx context.Context, req models.CreateCollectionRequest) (models.CollectionEntry, error)
	AddPayment(ctx context.Context, req models.CreatePaymentRequest) (models.PaymentRecord, error)
	FarmerBalance(ref string) (models.FarmerBalance, error)
	TopFarmers(limit int) []models.FarmerVolume
}

// ReportingAdapter renders the daily summary.
type ReportingAdapter interface {
	Summary(date string) string
}

// Dispatcher executes parsed commands against the ledger.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	ledger    Ledger
	reporting ReportingAdapter
	logger    *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(ledger Ledger, reporting ReportingAdapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:    ledger,
		reporting: reporting,
		logger:    logger,
	}
}

// HandleCommand runs cmd and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandCollect:
		return s.collect(ctx, cmd)
	case models.CommandPay:
		return s.pay(ctx, cmd)
	case models.CommandSummary:
		return s.summary(cmd)
	case models.CommandBalance:
		return s.balance(cmd)
	case models.CommandTop:
		return s.top(cmd)
	case models.CommandHelp:
		return HelpText, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) collect(ctx context.Context, cmd models.Command) (string, error) {
	if len(cmd.Args) < 3 {
		return "", ErrInvalidArguments
	}

	farmer, err := s.resolveFarmer(cmd.Args[0])
	if err != nil {
		return "", err
	}
	if !farmer.IsActive {
		return "", fmt.Errorf("%w: %s is inactive", ErrInvalidArguments, farmer.Name)
	}

	shift, ok := models.ParseShift(cmd.Args[1])
	if !ok {
		return "", fmt.Errorf("%w: unknown shift %q", ErrInvalidArguments, cmd.Args[1])
	}

	readings := make([]float64, 4)
	for i, arg := range cmd.Args[2:min(len(cmd.Args), 6)] {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil || v < 0 {
			return "", fmt.Errorf("%w: %q is not a number", ErrInvalidArguments, arg)
		}
		readings[i] = v
	}
	if readings[0] == 0 {
		return "", fmt.Errorf("%w: liters must be positive", ErrInvalidArguments)
	}

	entry, err := s.ledger.AddCollection(ctx, models.CreateCollectionRequest{
		FarmerID:       farmer.ID,
		Date:           s.ledger.Today(),
		Shift:          shift,
		QuantityLiters: readings[0],
		FatPercentage:  readings[1],
		SNFPercentage:  readings[2],
		RatePerLiter:   readings[3],
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Collection saved for %s (%s shift, %s): %.2f L @ %.2f = %.2f.",
		farmer.Name, entry.Shift, entry.Date, entry.QuantityLiters, entry.RatePerLiter, entry.Amount), nil
}

func (s *Service) pay(ctx context.Context, cmd models.Command) (string, error) {
	if len(cmd.Args) < 2 {
		return "", ErrInvalidArguments
	}

	farmer, err := s.resolveFarmer(cmd.Args[0])
	if err != nil {
		return "", err
	}

	amount, err := strconv.ParseFloat(cmd.Args[1], 64)
	if err != nil || amount <= 0 {
		return "", fmt.Errorf("%w: %q is not an amount", ErrInvalidArguments, cmd.Args[1])
	}

	req := models.CreatePaymentRequest{
		FarmerID: farmer.ID,
		Date:     s.ledger.Today(),
		Amount:   amount,
	}
	if len(cmd.Args) > 2 {
		method, ok := models.ParsePaymentMethod(cmd.Args[2])
		if !ok {
			return "", fmt.Errorf("%w: unknown payment method %q", ErrInvalidArguments, cmd.Args[2])
		}
		req.Method = method
	}
	if len(cmd.Args) > 3 {
		req.Reference = strings.Join(cmd.Args[3:], " ")
	}

	record, err := s.ledger.AddPayment(ctx, req)
	if err != nil {
		return "", err
	}

	message := fmt.Sprintf("Payment of %.2f recorded for %s via %s.", record.Amount, farmer.Name, record.Method)
	if balance, err := s.ledger.FarmerBalance(farmer.ID); err == nil {
		message += fmt.Sprintf(" Balance now %.2f.", balance.Balance)
	}
	return message, nil
}

func (s *Service) summary(cmd models.Command) (string, error) {
	if s.reporting == nil {
		return "", ErrUnsupportedCommand
	}

	date := s.ledger.Today()
	if len(cmd.Args) > 0 {
		parsed, err := time.Parse(dateFormat, cmd.Args[0])
		if err != nil {
			return "", fmt.Errorf("%w: dates look like %s", ErrInvalidArguments, dateFormat)
		}
		date = parsed.Format(dateFormat)
	}

	return s.reporting.Summary(date), nil
}

func (s *Service) balance(cmd models.Command) (string, error) {
	if len(cmd.Args) == 0 {
		return "", ErrInvalidArguments
	}

	balance, err := s.ledger.FarmerBalance(cmd.Args[0])
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s: %.2f L supplied, billed %.2f, paid %.2f, balance %.2f.",
		balance.Farmer.Name, balance.TotalLiters, balance.TotalAmount, balance.AmountPaid, balance.Balance), nil
}

func (s *Service) top(cmd models.Command) (string, error) {
	limit := 0
	if len(cmd.Args) > 0 {
		n, err := strconv.Atoi(cmd.Args[0])
		if err != nil || n <= 0 {
			return "", fmt.Errorf("%w: %q is not a count", ErrInvalidArguments, cmd.Args[0])
		}
		limit = n
	}

	ranked := s.ledger.TopFarmers(limit)
	if len(ranked) == 0 {
		return "No farmers registered yet.", nil
	}

	lines := make([]string, 0, len(ranked)+1)
	lines = append(lines, "Top farmers by volume:")
	for i, row := range ranked {
		lines = append(lines, fmt.Sprintf("%d. %s %.2f L (%.2f)", i+1, row.Farmer.Name, row.TotalLiters, row.TotalAmount))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Service) resolveFarmer(ref string) (models.Farmer, error) {
	farmer, ok := s.ledger.FindFarmer(ref)
	if !ok {
		return models.Farmer{}, fmt.Errorf("%w: no farmer with code %q", ErrInvalidArguments, ref)
	}
	return farmer, nil
}
