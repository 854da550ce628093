// Package tags lists the tags of a GitHub repository and deletes named tag references on request.
package tags
