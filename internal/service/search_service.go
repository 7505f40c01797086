package service

import (
	"fmt"
	"html"
	"log"
	"strings"

	"blogora/internal/dto"
	"blogora/internal/model"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

// SearchService maintains the Meilisearch index of published posts. Drafts
// never reach the index; unpublishing or deleting a post removes it.
type SearchService interface {
	IndexPost(post *model.Post) error
	DeletePost(id string) error
	Search(req dto.SearchPostsRequest) ([]dto.PostSearchHit, error)
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	filterableAttrs := []string{"author_id", "category_id", "tags"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	_, err := s.client.Index("posts").UpdateFilterableAttributes(&filterableInterface)
	if err != nil {
		log.Printf("Failed to update posts filterable attributes: %v", err)
	}

	sortableAttrs := []string{"published_date"}
	_, err = s.client.Index("posts").UpdateSortableAttributes(&sortableAttrs)
	if err != nil {
		log.Printf("Failed to update posts sortable attributes: %v", err)
	}
}

// cleanContentForIndex strips markup so the index only carries plain text.
func (s *searchService) cleanContentForIndex(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)

	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *searchService) IndexPost(post *model.Post) error {
	if post.Status != model.PostStatusPublished {
		return fmt.Errorf("only published posts are indexed")
	}

	tags := make([]string, 0, len(post.Tags))
	for _, tag := range post.Tags {
		tags = append(tags, tag.Name)
	}

	doc := dto.PostSearchHit{
		ID:             post.ID.String(),
		Title:          post.Title,
		Content:        s.cleanContentForIndex(post.Content),
		AuthorID:       post.AuthorID.String(),
		AuthorUsername: post.Author.Username,
		Tags:           tags,
		PublishedDate:  post.PublishedDate.Unix(),
	}

	if post.CategoryID != nil {
		doc.CategoryID = post.CategoryID.String()
	}

	task, err := s.client.Index("posts").AddDocuments([]dto.PostSearchHit{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed post %s, task id: %d", doc.ID, task.TaskUID)
	return nil
}

func (s *searchService) DeletePost(id string) error {
	_, err := s.client.Index("posts").DeleteDocument(id)
	return err
}

func (s *searchService) Search(req dto.SearchPostsRequest) ([]dto.PostSearchHit, error) {
	limit := req.Limit
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit: int64(limit),
	}
	if req.CategoryID != "" {
		searchReq.Filter = fmt.Sprintf("category_id = %q", req.CategoryID)
	}

	resp, err := s.client.Index("posts").Search(req.Query, searchReq)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var hits []dto.PostSearchHit
	if err := resp.Hits.Decode(&hits); err != nil {
		return nil, fmt.Errorf("failed to decode search hits: %w", err)
	}

	return hits, nil
}

func strPtr(s string) *string {
	return &s
}
