package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lukman83/relist/internal/listing"
	"github.com/lukman83/relist/internal/models"
	"github.com/lukman83/relist/internal/repost"
)

// listingView is a Listing as the tools report it.
type listingView struct {
	models.Listing
	DaysSince string `json:"days_since"`
}

func registerTools(s *server.MCPServer, svc *Service) {
	// list_listings
	listTool := mcp.NewTool("list_listings",
		mcp.WithDescription("List every listing in the authenticated wardrobe, oldest first, with favourites, views and days since creation"),
		mcp.WithNumber("per_page",
			mcp.Description("Listings per wardrobe page (default: 20)"),
		),
		mcp.WithNumber("max_pages",
			mcp.Description("Stop after this many pages (default: all)"),
		),
	)
	s.AddTool(listTool, svc.handleListListings)

	// get_listing
	getTool := mcp.NewTool("get_listing",
		mcp.WithDescription("Get one listing by id, merged with the upload editor view when a CSRF token is available"),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Listing id"),
		),
	)
	s.AddTool(getTool, svc.handleGetListing)
}

func (s *Service) handleListListings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := s.List
	if n := request.GetInt("per_page", 0); n > 0 {
		opts.PerPage = n
	}
	if n := request.GetInt("max_pages", 0); n > 0 {
		opts.MaxPages = n
	}

	inv, err := repost.LoadInventory(ctx, s.Market, s.Tokens, opts, s.logger())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list error: %v", err)), nil
	}

	now := s.now()
	views := make([]listingView, 0, len(inv.Listings))
	for _, l := range inv.Listings {
		views = append(views, listingView{Listing: l, DaysSince: listing.DaysSince(l, now)})
	}

	data, _ := json.MarshalIndent(views, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Service) handleGetListing(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := int64(request.GetInt("id", 0))
	if id <= 0 {
		return mcp.NewToolResultError("id is required"), nil
	}

	item, err := s.Market.GetItem(ctx, id)
	if err != nil {
		s.logger().Warn("item detail failed", "item_id", id, "err", err)
	}

	var editor models.Raw
	if token, ok := s.Tokens.Extract(ctx, s.Market.Cookies()); ok {
		editor, err = s.Market.GetUploadEditorDetails(ctx, id, token)
		if err != nil {
			s.logger().Warn("editor details failed", "item_id", id, "err", err)
		}
	}
	if item == nil && editor == nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing %d not found", id)), nil
	}

	l, err := listing.Build(listing.Merge(item, listing.EditorSource(editor)))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing %d: %v", id, err)), nil
	}

	data, _ := json.MarshalIndent(listingView{Listing: l, DaysSince: listing.DaysSince(l, s.now())}, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}
