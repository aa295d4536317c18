package sqlinline

// QJobEnqueue inserts a deck job in the given initial status. The request
// payload travels as jsonb so the worker reconstructs the full generation
// request without extra reads.
const QJobEnqueue = `--sql 6f2b8c4d-1e97-4a35-b0d8-4c7a2e9f5b61
insert into deck_jobs(id, presentation_id, status, request_json, created_at, updated_at)
values (gen_random_uuid(), $1::uuid, $2::text, $3::jsonb, now(), now())
returning id;
`

// QJobClaim takes the oldest job in status $1 and flips it to $2 in one
// statement. skip locked keeps concurrent workers from fighting over rows.
const QJobClaim = `--sql d41a7e92-6b58-4f03-a2c9-8e1d5f3b0a74
with next_job as (
    select id
    from deck_jobs
    where status = $1::text
    order by created_at asc
    for update skip locked
    limit 1
),
claimed as (
    update deck_jobs
    set status = $2::text, updated_at = now()
    where id in (select id from next_job)
    returning id, presentation_id, request_json
)
select id, presentation_id, request_json from claimed;
`

const QJobMarkSucceeded = `--sql 9a3c5e18-7d42-4b6f-80a1-3f8e6c2d9b05
update deck_jobs
set status = $2::text,
    result_json = $3::jsonb,
    updated_at = now()
where id = $1::uuid;
`

const QJobMarkFailed = `--sql 2d7f9b43-0c61-4e8a-95b7-6a4d1e8c3f29
update deck_jobs
set status = $2::text,
    error_text = $3::text,
    updated_at = now()
where id = $1::uuid;
`
