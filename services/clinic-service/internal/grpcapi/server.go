package grpcapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/scheduling"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/timeofday"
)

const ServiceName = "clinic.v1.Availability"

// Availability is the read side of the scheduler exposed over gRPC.
type Availability interface {
	Day(ctx context.Context, date time.Time) (scheduling.DayConfig, error)
	IsSlotAvailable(ctx context.Context, start time.Time, durationMinutes int) (bool, error)
	FreeSlots(ctx context.Context, date time.Time, durationMinutes int) ([]string, error)
	FullyBookedDaysInMonth(ctx context.Context, month time.Month, year int) ([]int, error)
	DefaultDuration() int
}

type server struct {
	avail Availability
}

// Register installs the availability service on grpcServer. Requests and
// responses are google.protobuf.Struct messages.
func Register(grpcServer *grpc.Server, avail Availability) {
	grpcServer.RegisterService(&serviceDesc, &server{avail: avail})
}

type handlerFunc func(s *server, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unary(name string, fn handlerFunc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(*server)
			if interceptor == nil {
				return fn(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary("WindowsFor", (*server).windowsFor),
		unary("IsSlotAvailable", (*server).isSlotAvailable),
		unary("FreeSlots", (*server).freeSlots),
		unary("FullyBookedDays", (*server).fullyBookedDays),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clinic/v1/availability.proto",
}

func (s *server) windowsFor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	date, err := dateField(req, "date")
	if err != nil {
		return nil, toStatus(err)
	}
	day, err := s.avail.Day(ctx, date)
	if err != nil {
		return nil, toStatus(err)
	}
	windows := make([]any, 0, len(day.Windows))
	for _, w := range day.Windows {
		windows = append(windows, map[string]any{
			"from": timeofday.ToHHMM(w.From),
			"to":   timeofday.ToHHMM(w.To),
		})
	}
	return newStruct(map[string]any{
		"date":     timeofday.FormatDate(day.Date),
		"source":   string(day.Source),
		"isClosed": day.Closed(),
		"windows":  windows,
	})
}

func (s *server) isSlotAvailable(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw := stringField(req, "start")
	start, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "start must be RFC3339")
	}
	duration := intField(req, "durationMinutes", s.avail.DefaultDuration())
	ok, err := s.avail.IsSlotAvailable(ctx, start, duration)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]any{"available": ok})
}

func (s *server) freeSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	date, err := dateField(req, "date")
	if err != nil {
		return nil, toStatus(err)
	}
	duration := intField(req, "durationMinutes", s.avail.DefaultDuration())
	slots, err := s.avail.FreeSlots(ctx, date, duration)
	if err != nil {
		return nil, toStatus(err)
	}
	list := make([]any, 0, len(slots))
	for _, slot := range slots {
		list = append(list, slot)
	}
	return newStruct(map[string]any{"slots": list})
}

func (s *server) fullyBookedDays(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	month := intField(req, "month", 0)
	year := intField(req, "year", 0)
	days, err := s.avail.FullyBookedDaysInMonth(ctx, time.Month(month), year)
	if err != nil {
		return nil, toStatus(err)
	}
	list := make([]any, 0, len(days))
	for _, d := range days {
		list = append(list, d)
	}
	return newStruct(map[string]any{"days": list})
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func stringField(req *structpb.Struct, key string) string {
	v, ok := req.GetFields()[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.GetStringValue())
}

func intField(req *structpb.Struct, key string, fallback int) int {
	v, ok := req.GetFields()[key]
	if !ok {
		return fallback
	}
	if _, isNum := v.GetKind().(*structpb.Value_NumberValue); !isNum {
		return fallback
	}
	return int(v.GetNumberValue())
}

func dateField(req *structpb.Struct, key string) (time.Time, error) {
	raw := stringField(req, key)
	if raw == "" {
		return time.Time{}, model.Invalid(key, "is required")
	}
	d, err := timeofday.ParseDate(raw)
	if err != nil {
		return time.Time{}, model.Invalid(key, "must be YYYY-MM-DD")
	}
	return d, nil
}

func toStatus(err error) error {
	var (
		ve   *model.ValidationError
		nf   *model.NotFoundError
		dup  *model.DuplicateError
		conf *model.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Error())
	case errors.As(err, &nf):
		return status.Error(codes.NotFound, nf.Error())
	case errors.As(err, &dup):
		return status.Error(codes.AlreadyExists, dup.Error())
	case errors.As(err, &conf):
		return status.Error(codes.FailedPrecondition, conf.Error())
	}
	return status.Error(codes.Internal, "internal error")
}
