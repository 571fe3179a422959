package grpcapi

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tammy-rb/siri-cosmetics-server/libs/grpcx"
)

type Client struct {
	conn *grpc.ClientConn
}

func NewClient(addr string, extra ...grpc.DialOption) (*Client, error) {
	conn, err := grpcx.Dial(addr, grpcx.DialOptions{}, extra...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

type Window struct {
	From string
	To   string
}

type DayWindows struct {
	Date     string
	Source   string
	IsClosed bool
	Windows  []Window
}

func (c *Client) WindowsFor(ctx context.Context, date string) (DayWindows, error) {
	resp, err := c.call(ctx, "WindowsFor", map[string]any{"date": date})
	if err != nil {
		return DayWindows{}, err
	}
	m := resp.AsMap()
	out := DayWindows{
		Date:     asString(m["date"]),
		Source:   asString(m["source"]),
		IsClosed: m["isClosed"] == true,
	}
	list, _ := m["windows"].([]any)
	for _, item := range list {
		w, _ := item.(map[string]any)
		out.Windows = append(out.Windows, Window{From: asString(w["from"]), To: asString(w["to"])})
	}
	return out, nil
}

// IsSlotAvailable takes an RFC3339 start.
func (c *Client) IsSlotAvailable(ctx context.Context, start string, durationMinutes int) (bool, error) {
	resp, err := c.call(ctx, "IsSlotAvailable", map[string]any{"start": start, "durationMinutes": durationMinutes})
	if err != nil {
		return false, err
	}
	return resp.GetFields()["available"].GetBoolValue(), nil
}

func (c *Client) FreeSlots(ctx context.Context, date string, durationMinutes int) ([]string, error) {
	req := map[string]any{"date": date}
	if durationMinutes > 0 {
		req["durationMinutes"] = durationMinutes
	}
	resp, err := c.call(ctx, "FreeSlots", req)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, v := range resp.GetFields()["slots"].GetListValue().GetValues() {
		out = append(out, v.GetStringValue())
	}
	return out, nil
}

func (c *Client) FullyBookedDays(ctx context.Context, month, year int) ([]int, error) {
	resp, err := c.call(ctx, "FullyBookedDays", map[string]any{"month": month, "year": year})
	if err != nil {
		return nil, err
	}
	var out []int
	for _, v := range resp.GetFields()["days"].GetListValue().GetValues() {
		out = append(out, int(v.GetNumberValue()))
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, method string, req map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", method, err)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
