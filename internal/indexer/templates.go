package indexer

// Template strings are program constants with positional printf-style
// substitution slots. There is deliberately no HTML escaping of blog
// text here; that is a documented exposure, not an oversight.

// tmplBlog has six slots: id, heading, sub-heading, author link,
// author, content.
const tmplBlog = `<article class="post" data-id="%d">
  <h1>%s</h1>
  <h2>%s</h2>
  <p class="byline">by <a href="%s">%s</a></p>
  <div class="content">%s</div>
</article>
`

// tmplBlogInfo has six slots: id, heading, sub-heading, author link,
// author, timestamp — one row of the blog index.
const tmplBlogInfo = `<li class="post-summary">
  <a href="/blogs/%d">%s</a>
  <span class="sub-heading">%s</span>
  <span class="author"><a href="%s">%s</a></span>
  <span class="timestamp">%d</span>
</li>
`
