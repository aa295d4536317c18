// Package sqlinline holds every SQL statement the service executes. Each
// constant starts with a `--sql <uuid>` marker line; the runner refuses
// anything without one, and the marker ties log lines back to the statement.
package sqlinline

// QImageReplace swaps in the new image for a slide atomically. The delete and
// insert run in one statement so a crash can never leave two records for the
// same (presentation, slide) pair.
const QImageReplace = `--sql 7c1f2a9e-8b3d-4f6a-9c4e-2d5b8a1e7f30
with removed as (
    delete from slide_images
    where presentation_id = $2::uuid
      and slide_index = $3::int
),
inserted as (
    insert into slide_images(id, presentation_id, slide_index, url, created_at)
    values ($1::uuid, $2::uuid, $3::int, $4::text, now())
    returning id, presentation_id, slide_index, url, created_at
)
select id, presentation_id, slide_index, url, created_at from inserted;
`

const QImageDeleteForPresentation = `--sql 3e9d4c71-5a20-4b8f-b6d2-9f1c3a7e8054
delete from slide_images
where presentation_id = $1::uuid;
`

const QImageListForPresentation = `--sql b85a1d36-2c47-4e0b-8f93-6d4e0b2a9c17
select id, presentation_id, slide_index, url, created_at
from slide_images
where presentation_id = $1::uuid
order by slide_index asc;
`
