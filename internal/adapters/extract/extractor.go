// Package extract pulls owned post records out of a list query response. The
// response is an arbitrarily deep, arbitrarily shaped tree with no fixed
// schema, so extraction is a recursive-descent visit over gjson's tagged node
// representation with a terminal match predicate, not struct decoding.
package extract

import (
	"time"

	"github.com/tidwall/gjson"

	"tweetsweep/internal/domain"
)

// createdAtLayout is the platform's post timestamp wire format.
const createdAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

const tweetResultPath = "content.itemContent.tweet_results.result"

// Posts walks every reachable node of doc and returns the post records that
// belong to ownerUserID. Malformed or unrecognized shapes are skipped, never
// an error. When the same post id appears more than once the later record
// replaces the earlier, which keeps repeated extraction over overlapping
// documents idempotent.
func Posts(doc []byte, ownerUserID string) []domain.Post {
	if ownerUserID == "" {
		return nil
	}

	var out []domain.Post
	index := map[domain.PostID]int{}

	add := func(post domain.Post) {
		if i, ok := index[post.ID]; ok {
			out[i] = post
			return
		}
		index[post.ID] = len(out)
		out = append(out, post)
	}

	walk(gjson.ParseBytes(doc), ownerUserID, add)
	return out
}

func walk(node gjson.Result, owner string, add func(domain.Post)) {
	switch {
	case node.IsObject():
		if post, accepted, matched := matchEntry(node, owner); matched {
			// A matched entry is terminal for this branch even when the
			// record is rejected (foreign author, missing fields).
			if accepted {
				add(post)
			}
			return
		}
		node.ForEach(func(_, value gjson.Result) bool {
			walk(value, owner, add)
			return true
		})
	case node.IsArray():
		node.ForEach(func(_, value gjson.Result) bool {
			walk(value, owner, add)
			return true
		})
	}
}

// matchEntry tests the structural predicate for a timeline entry wrapping a
// post result and, on a match, applies the field extraction with its fallback
// precedence. The record is accepted only when a post id and a non-empty body
// are present and the resolved author is the owner; retweets and quotes
// surfaced in the timeline carry foreign author ids and are excluded here.
func matchEntry(node gjson.Result, owner string) (domain.Post, bool, bool) {
	if !node.Get("entryId").Exists() {
		return domain.Post{}, false, false
	}

	result := node.Get(tweetResultPath)
	if !result.Exists() {
		return domain.Post{}, false, false
	}

	payload := result.Get("legacy")
	if !payload.Exists() {
		payload = result
	}

	authorID := payload.Get("user_id_str").String()
	if authorID == "" {
		authorID = result.Get("core.user_results.result.rest_id").String()
	}

	postID := result.Get("rest_id").String()
	if postID == "" {
		postID = result.Get("id_str").String()
	}

	body := payload.Get("full_text").String()
	if postID == "" || body == "" || authorID != owner {
		return domain.Post{}, false, true
	}

	createdAt := payload.Get("created_at").String()

	return domain.Post{
		ID:              domain.PostID(postID),
		BodyText:        body,
		CreatedAt:       createdAt,
		CreatedAtMillis: createdAtMillis(createdAt),
	}, true, true
}

func createdAtMillis(createdAt string) int64 {
	if createdAt == "" {
		return 0
	}

	parsed, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return 0
	}

	return parsed.UnixMilli()
}
